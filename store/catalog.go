package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"restaurant-orders-api/models"
)

// CatalogStore owns products and categories, including the referential
// integrity guard that keeps historical orders intact.
type CatalogStore struct {
	DB *gorm.DB
}

// Categories

func (s *CatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.DB.WithContext(ctx).Preload("Subcategories").
		Order("display_order asc, id asc").Find(&out).Error
	return out, err
}

func (s *CatalogStore) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.DB.WithContext(ctx).Create(c).Error
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, id uint, fields map[string]interface{}) (*models.Category, error) {
	var c models.Category
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&c).Updates(fields).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CanDeleteCategory is false while any non-cancelled order references a
// product in the category.
func (s *CatalogStore) CanDeleteCategory(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.OrderLine{}).
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("products.category_id = ? AND orders.status <> ?", id, models.OrderCancelled).
		Count(&n).Error
	return n == 0, err
}

// DeleteCategory removes a category (and its subcategories) unless the
// guard blocks it. The guard condition is part of the DELETE itself, so a
// checkout committing concurrently cannot slip in between a separate check
// and the delete. The entity is left unchanged on rejection.
func (s *CatalogStore) DeleteCategory(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(`id = ? AND NOT EXISTS (
			SELECT 1 FROM order_lines
			JOIN orders ON orders.id = order_lines.order_id
			JOIN products ON products.id = order_lines.product_id
			WHERE products.category_id = categories.id AND orders.status <> ?)`,
			id, models.OrderCancelled).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return models.ErrNotFound
			}
			return models.ErrReferencedByOrder
		}
		return tx.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error
	})
}

// Products

// ProductFilter narrows the public menu listing.
type ProductFilter struct {
	CategoryID    uint
	SubcategoryID uint
	Search        string
	OnlyAvailable bool
	Recommended   bool
}

func (s *CatalogStore) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.DB.WithContext(ctx).Preload("Category").Preload("Subcategory")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != 0 {
		q = q.Where("subcategory_id = ?", f.SubcategoryID)
	}
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	if f.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	if f.Recommended {
		q = q.Where("is_recommended = ?", true)
	}
	var out []models.Product
	err := q.Order("display_order asc, id asc").Find(&out).Error
	return out, err
}

func (s *CatalogStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.DB.WithContext(ctx).Preload("Category").Preload("Subcategory").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&p).Updates(fields).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CanDeleteProduct is false while any non-cancelled order holds a line for
// the product. Orders snapshot their lines, but the reference is kept for
// reporting, so deletion stays blocked until every referencing order is
// cancelled.
func (s *CatalogStore) CanDeleteProduct(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.OrderLine{}).
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("order_lines.product_id = ? AND orders.status <> ?", id, models.OrderCancelled).
		Count(&n).Error
	return n == 0, err
}

// DeleteProduct deletes atomically: the guard is the WHERE clause of the
// DELETE, so no order committing between a pre-check and the delete can be
// orphaned. CanDeleteProduct stays advisory for the console pre-check.
func (s *CatalogStore) DeleteProduct(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(`id = ? AND NOT EXISTS (
			SELECT 1 FROM order_lines
			JOIN orders ON orders.id = order_lines.order_id
			WHERE order_lines.product_id = products.id AND orders.status <> ?)`,
			id, models.OrderCancelled).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return models.ErrNotFound
			}
			return models.ErrReferencedByOrder
		}
		return nil
	})
}

// Subcategories

func (s *CatalogStore) CreateSubcategory(ctx context.Context, sc *models.Subcategory) error {
	var c models.Category
	if err := s.DB.WithContext(ctx).First(&c, sc.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Create(sc).Error
}
