package entity

import "time"

// ProfileUpdates lists the profile columns to change.
type ProfileUpdates struct {
	FirstName        *string
	LastName         *string
	ProfilePicture   *string
	Gender           *string
	DateOfBirth      *time.Time
	ClearDateOfBirth bool
	Address          *string
	Phone            *string
	City             *string
	Area             *string
	ZipCode          *string
	Bio              *string
	MedicalHistory   *string
}

// ToMap converts to a GORM update map.
func (u ProfileUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	putString(updates, "first_name", u.FirstName)
	putString(updates, "last_name", u.LastName)
	putString(updates, "profile_picture", u.ProfilePicture)
	putString(updates, "gender", u.Gender)
	putString(updates, "address", u.Address)
	putString(updates, "phone", u.Phone)
	putString(updates, "city", u.City)
	putString(updates, "area", u.Area)
	putString(updates, "zip_code", u.ZipCode)
	putString(updates, "bio", u.Bio)
	putString(updates, "medical_history", u.MedicalHistory)
	if u.DateOfBirth != nil {
		updates["date_of_birth"] = *u.DateOfBirth
	} else if u.ClearDateOfBirth {
		updates["date_of_birth"] = nil
	}
	return updates
}

// IsEmpty reports whether nothing would change.
func (u ProfileUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// CategoryUpdates lists the category columns to change. The slug is never updated.
type CategoryUpdates struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// ToMap converts to a GORM update map.
func (u CategoryUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	putString(updates, "name", u.Name)
	putString(updates, "description", u.Description)
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether nothing would change.
func (u CategoryUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ProductUpdates lists the product columns to change. The slug is never updated.
type ProductUpdates struct {
	Name                 *string
	CategoryID           *uint
	GenericName          *string
	BrandName            *string
	Description          *string
	DosageInfo           *string
	Price                *float64
	Stock                *uint
	Unit                 *string
	PrescriptionRequired *bool
	Image                *string
	IsActive             *bool
}

// ToMap converts to a GORM update map.
func (u ProductUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	putString(updates, "name", u.Name)
	putString(updates, "generic_name", u.GenericName)
	putString(updates, "brand_name", u.BrandName)
	putString(updates, "description", u.Description)
	putString(updates, "dosage_info", u.DosageInfo)
	putString(updates, "unit", u.Unit)
	putString(updates, "image", u.Image)
	if u.CategoryID != nil {
		updates["category_id"] = *u.CategoryID
	}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.Stock != nil {
		updates["stock"] = *u.Stock
	}
	if u.PrescriptionRequired != nil {
		updates["prescription_required"] = *u.PrescriptionRequired
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether nothing would change.
func (u ProductUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

func putString(updates map[string]interface{}, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}
