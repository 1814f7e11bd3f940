package database

import (
	"context"

	"github.com/atelierhq/atelier/database/models"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// CreateCategory creates a category. The name must not be taken.
func (c *Client) CreateCategory(ctx context.Context, category *models.Category) error {
	taken, err := c.categoryNameTaken(ctx, category.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}

	if err := c.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		log.Error("failed to create category", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := c.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get category by id", "error", err)
		}
		return nil, err
	}
	return &category, nil
}

func (c *Client) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := c.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get category by name", "error", err)
		}
		return nil, err
	}
	return &category, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		log.Error("failed to list categories", "error", err)
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListFeaturedCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.db.WithContext(ctx).Where("is_featured = ?", true).Order("id").Find(&categories).Error; err != nil {
		log.Error("failed to list featured categories", "error", err)
		return nil, err
	}
	return categories, nil
}

// UpdateCategory overwrites the category's mutable fields. A rename onto an
// existing name fails with ErrDuplicateName.
func (c *Client) UpdateCategory(ctx context.Context, category *models.Category) error {
	taken, err := c.categoryNameTaken(ctx, category.Name, category.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateName
	}

	// Select lists the columns explicitly so a cleared is_featured checkbox
	// still writes false.
	err = c.db.WithContext(ctx).Model(category).
		Select("name", "featured_image_url", "is_featured").
		Updates(category).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		log.Error("failed to update category", "error", err)
		return err
	}
	return nil
}

// DeleteCategory deletes the category and every painting that belongs to it
// in one transaction. No orphaned paintings survive.
func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	category, err := c.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("category_id = ?", category.ID).Delete(&models.Painting{}).Error; err != nil {
			log.Error("failed to delete paintings of category", "category", category.Name, "error", err)
			return err
		}
		if err := tx.Unscoped().Delete(category).Error; err != nil {
			log.Error("failed to delete category", "category", category.Name, "error", err)
			return err
		}
		return nil
	})
}

func (c *Client) categoryNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := c.db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		log.Error("failed to check category name", "error", err)
		return false, err
	}
	return count > 0, nil
}
