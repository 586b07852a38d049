package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/entity"
)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint) *uint        { return &v }

func TestCategoryLifecycle(t *testing.T) {
	svc := NewCatalogService(newTestRepo(t), newTestStorage(t))
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, entity.CategoryRequest{Name: strPtr("Pain Relief")})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Slug != "pain-relief" || !category.IsActive {
		t.Fatalf("unexpected category: %+v", category)
	}

	_, err = svc.CreateCategory(ctx, entity.CategoryRequest{Name: strPtr("pain relief")})
	requireFieldError(t, err, "name")
	_, err = svc.CreateCategory(ctx, entity.CategoryRequest{Name: strPtr("  ")})
	requireFieldError(t, err, "name")

	// PUT requires the name, PATCH does not.
	_, err = svc.UpdateCategory(ctx, "pain-relief", entity.CategoryRequest{Description: strPtr("x")}, false)
	requireFieldError(t, err, "name")

	updated, err := svc.UpdateCategory(ctx, "pain-relief", entity.CategoryRequest{Name: strPtr("Analgesics"), IsActive: boolPtr(false)}, true)
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Name != "Analgesics" || updated.Slug != "pain-relief" || updated.IsActive {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.GetCategory(ctx, "pain-relief", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive category must be hidden from public reads, got %v", err)
	}
	if _, err := svc.GetCategory(ctx, "pain-relief", true); err != nil {
		t.Fatalf("staff read of inactive category: %v", err)
	}

	if err := svc.DeleteCategory(ctx, "pain-relief"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if err := svc.DeleteCategory(ctx, "pain-relief"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	store := newTestStorage(t)
	svc := NewCatalogService(newTestRepo(t), store)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, entity.CategoryRequest{Name: strPtr("Vitamins")}); err != nil {
		t.Fatalf("create category: %v", err)
	}

	_, err := svc.CreateProduct(ctx, entity.ProductRequest{}, nil)
	requireFieldError(t, err, "name", "category", "price")
	_, err = svc.CreateProduct(ctx, entity.ProductRequest{Name: strPtr("C"), Category: strPtr("missing"), Price: floatPtr(1)}, nil)
	requireFieldError(t, err, "category")
	_, err = svc.CreateProduct(ctx, entity.ProductRequest{Name: strPtr("C"), Category: strPtr("vitamins"), Price: floatPtr(-1)}, nil)
	requireFieldError(t, err, "price")

	product, err := svc.CreateProduct(ctx, entity.ProductRequest{
		Name:     strPtr("Vitamin C"),
		Category: strPtr("vitamins"),
		Price:    floatPtr(120.456),
		Stock:    uintPtr(10),
	}, &Upload{Filename: "c.png", Data: pngBytes})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.Slug != "vitamin-c" || product.Unit != defaultUnit || !product.IsActive || product.Price != 120.46 {
		t.Fatalf("unexpected product: %+v", product)
	}
	if product.Category == nil || product.Category.Slug != "vitamins" {
		t.Fatalf("category not loaded: %+v", product.Category)
	}
	mainImage := product.Image
	if !fileExists(t, store, mainImage) {
		t.Fatalf("main image not stored: %q", mainImage)
	}

	twin, err := svc.CreateProduct(ctx, entity.ProductRequest{Name: strPtr("Vitamin C"), Category: strPtr("vitamins"), Price: floatPtr(1)}, nil)
	if err != nil {
		t.Fatalf("create twin: %v", err)
	}
	if twin.Slug == product.Slug {
		t.Fatal("products with the same name must get distinct slugs")
	}

	updated, err := svc.UpdateProduct(ctx, "vitamin-c", entity.ProductRequest{Price: floatPtr(99)}, &Upload{Filename: "d.png", Data: pngBytes}, true)
	if err != nil {
		t.Fatalf("patch product: %v", err)
	}
	if updated.Price != 99 || updated.Name != "Vitamin C" || updated.Image == mainImage {
		t.Fatalf("unexpected patch result: %+v", updated)
	}
	if fileExists(t, store, mainImage) {
		t.Fatal("replaced image must be removed")
	}

	_, err = svc.UpdateProduct(ctx, "vitamin-c", entity.ProductRequest{Name: strPtr("Vitamin C")}, nil, false)
	requireFieldError(t, err, "price", "category")

	extra, err := svc.AddProductImage(ctx, "vitamin-c", &Upload{Filename: "e.png", Data: pngBytes})
	if err != nil {
		t.Fatalf("add image: %v", err)
	}
	reloaded, err := svc.GetProduct(ctx, "vitamin-c", false)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if len(reloaded.Images) != 1 || reloaded.Images[0].ID != extra.ID {
		t.Fatalf("extra image missing: %+v", reloaded.Images)
	}

	if err := svc.DeleteProductImage(ctx, "vitamin-c", extra.ID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown image, got %v", err)
	}
	if err := svc.DeleteProductImage(ctx, "vitamin-c", extra.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if fileExists(t, store, extra.Image) {
		t.Fatal("deleted image file must be removed")
	}

	if err := svc.DeleteProduct(ctx, "vitamin-c"); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if fileExists(t, store, updated.Image) {
		t.Fatal("product image must be removed with the product")
	}
	if _, err := svc.GetProduct(ctx, "vitamin-c", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProductsRejectsInvertedPriceRange(t *testing.T) {
	svc := NewCatalogService(newTestRepo(t), nil)
	_, _, err := svc.ListProducts(context.Background(), &entity.ProductQuery{MinPrice: floatPtr(10), MaxPrice: floatPtr(5)})
	requireFieldError(t, err, "min_price")
}

func TestDisplayedCategories(t *testing.T) {
	svc := NewCatalogService(newTestRepo(t), nil)
	ctx := context.Background()

	for _, name := range []string{"Vitamins", "Baby Care"} {
		if _, err := svc.CreateCategory(ctx, entity.CategoryRequest{Name: strPtr(name)}); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	_, err := svc.CreateDisplayedCategory(ctx, entity.DisplayedCategoryRequest{})
	requireFieldError(t, err, "category")

	vitamins, err := svc.CreateDisplayedCategory(ctx, entity.DisplayedCategoryRequest{Category: strPtr("vitamins"), Position: uintPtr(2)})
	if err != nil {
		t.Fatalf("create displayed: %v", err)
	}
	baby, err := svc.CreateDisplayedCategory(ctx, entity.DisplayedCategoryRequest{Category: strPtr("baby-care"), Position: uintPtr(1)})
	if err != nil {
		t.Fatalf("create displayed: %v", err)
	}

	items, err := svc.ListDisplayedCategories(ctx)
	if err != nil {
		t.Fatalf("list displayed: %v", err)
	}
	if len(items) != 2 || items[0].ID != baby.ID || items[0].Category == nil || items[0].Category.Slug != "baby-care" {
		t.Fatalf("unexpected order: %+v", items)
	}

	moved, err := svc.UpdateDisplayedCategory(ctx, vitamins.ID, entity.DisplayedCategoryRequest{Position: uintPtr(0)})
	if err != nil {
		t.Fatalf("update displayed: %v", err)
	}
	if moved.Position != 0 {
		t.Fatalf("position = %d, want 0", moved.Position)
	}

	if err := svc.DeleteDisplayedCategory(ctx, baby.ID); err != nil {
		t.Fatalf("delete displayed: %v", err)
	}
	if err := svc.DeleteDisplayedCategory(ctx, baby.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetCategory(ctx, "baby-care", false); err != nil {
		t.Fatalf("category must survive removal from the home page: %v", err)
	}
}
