package entity

import "time"

// DbCategory groups products.
type DbCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"column:name;type:varchar(150);uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"column:slug;type:varchar(160);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"column:description;type:text" json:"description"`
	IsActive    bool   `gorm:"column:is_active;not null;index" json:"is_active"`
}

// TableName overrides default pluralised name.
func (DbCategory) TableName() string {
	return "categories"
}

// DbProduct is a sellable catalog item.
type DbProduct struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string      `gorm:"column:name;type:varchar(200);index;not null" json:"name"`
	Slug       string      `gorm:"column:slug;type:varchar(220);uniqueIndex;not null" json:"slug"`
	CategoryID uint        `gorm:"column:category_id;index;not null" json:"category_id"`
	Category   *DbCategory `gorm:"foreignKey:CategoryID" json:"-"`

	GenericName          string  `gorm:"column:generic_name;type:varchar(200);index" json:"generic_name"`
	BrandName            string  `gorm:"column:brand_name;type:varchar(200);index" json:"brand_name"`
	Description          string  `gorm:"column:description;type:text" json:"description"`
	DosageInfo           string  `gorm:"column:dosage_info;type:varchar(255)" json:"dosage_info"`
	Price                float64 `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Stock                uint    `gorm:"column:stock;not null;default:0" json:"stock"`
	Unit                 string  `gorm:"column:unit;type:varchar(50);not null;default:pcs" json:"unit"`
	PrescriptionRequired bool    `gorm:"column:prescription_required;not null;default:false" json:"prescription_required"`
	Image                string  `gorm:"column:image;type:varchar(500)" json:"image"`
	IsActive             bool    `gorm:"column:is_active;not null;index" json:"is_active"`

	Images []DbProductImage `gorm:"foreignKey:ProductID" json:"images"`
}

// TableName overrides default pluralised name.
func (DbProduct) TableName() string {
	return "products"
}

// DbProductImage is an additional picture attached to a product.
type DbProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProductID uint      `gorm:"column:product_id;index;not null" json:"product_id"`
	Image     string    `gorm:"column:image;type:varchar(500);not null" json:"image"`
}

// TableName overrides default pluralised name.
func (DbProductImage) TableName() string {
	return "product_images"
}

// DbDisplayedCategory places a category on the home page at a position.
type DbDisplayedCategory struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	CategoryID uint        `gorm:"column:category_id;index;not null" json:"category_id"`
	Category   *DbCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Position   uint        `gorm:"column:position;not null;default:0;index" json:"position"`
}

// TableName overrides default pluralised name.
func (DbDisplayedCategory) TableName() string {
	return "displayed_categories"
}

// CategoryQuery filters the category listing.
type CategoryQuery struct {
	BaseParams
	Search string `json:"search" form:"search" query:"search"`
}

// ProductQuery filters the product listing.
type ProductQuery struct {
	BaseParams
	Search   string   `json:"search" form:"search" query:"search"`
	Category string   `json:"category" form:"category" query:"category"`
	MinPrice *float64 `json:"min_price" form:"min_price" query:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `json:"max_price" form:"max_price" query:"max_price" binding:"omitempty,gte=0"`
}

// CategoryRequest is the create/update payload for categories.
type CategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=150"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ProductRequest is the create/update payload for products. It binds from
// JSON and from multipart forms (where the main image travels as "image").
type ProductRequest struct {
	Name                 *string  `json:"name" form:"name" binding:"omitempty,max=200"`
	Category             *string  `json:"category" form:"category"`
	GenericName          *string  `json:"generic_name" form:"generic_name" binding:"omitempty,max=200"`
	BrandName            *string  `json:"brand_name" form:"brand_name" binding:"omitempty,max=200"`
	Description          *string  `json:"description" form:"description"`
	DosageInfo           *string  `json:"dosage_info" form:"dosage_info" binding:"omitempty,max=255"`
	Price                *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	Stock                *uint    `json:"stock" form:"stock"`
	Unit                 *string  `json:"unit" form:"unit" binding:"omitempty,max=50"`
	PrescriptionRequired *bool    `json:"prescription_required" form:"prescription_required"`
	IsActive             *bool    `json:"is_active" form:"is_active"`
	ClearImage           bool     `json:"clear_image" form:"clear_image"`
}

// DisplayedCategoryRequest places a category (by slug) at a position.
type DisplayedCategoryRequest struct {
	Category *string `json:"category"`
	Position *uint   `json:"position"`
}

// CategoryResponse is the serialised category.
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductImageResponse is the serialised extra image.
type ProductImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

// ProductResponse is the serialised product; Category is the category slug.
type ProductResponse struct {
	ID                   uint                   `json:"id"`
	Name                 string                 `json:"name"`
	Slug                 string                 `json:"slug"`
	Category             string                 `json:"category"`
	GenericName          string                 `json:"generic_name"`
	BrandName            string                 `json:"brand_name"`
	Description          string                 `json:"description"`
	DosageInfo           string                 `json:"dosage_info"`
	Price                float64                `json:"price"`
	Stock                uint                   `json:"stock"`
	Unit                 string                 `json:"unit"`
	PrescriptionRequired bool                   `json:"prescription_required"`
	Image                *string                `json:"image"`
	Images               []ProductImageResponse `json:"images"`
	IsActive             bool                   `json:"is_active"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// DisplayedCategoryResponse is a home-page entry with its category embedded.
type DisplayedCategoryResponse struct {
	ID       uint             `json:"id"`
	Position uint             `json:"position"`
	Category CategoryResponse `json:"category"`
}

// CategoryListResponse is a page of categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Meta       *Meta              `json:"meta"`
}

// ProductListResponse is a page of products.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Meta     *Meta             `json:"meta"`
}

// DisplayedCategoryListResponse lists home-page categories in position order.
type DisplayedCategoryListResponse struct {
	Items []DisplayedCategoryResponse `json:"items"`
}
