package database

import (
	"context"

	"github.com/atelierhq/atelier/database/models"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

func (c *Client) CreatePainting(ctx context.Context, painting *models.Painting) error {
	if err := c.db.WithContext(ctx).Create(painting).Error; err != nil {
		log.Error("failed to create painting", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetPaintingByID(ctx context.Context, id uint) (*models.Painting, error) {
	var painting models.Painting
	if err := c.db.WithContext(ctx).First(&painting, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get painting by id", "error", err)
		}
		return nil, err
	}
	return &painting, nil
}

// ListPaintings returns every painting, sold or not.
func (c *Client) ListPaintings(ctx context.Context) ([]models.Painting, error) {
	var paintings []models.Painting
	if err := c.db.WithContext(ctx).Order("id").Find(&paintings).Error; err != nil {
		log.Error("failed to list paintings", "error", err)
		return nil, err
	}
	return paintings, nil
}

// ListAvailablePaintings returns unsold paintings, most recently created
// first.
func (c *Client) ListAvailablePaintings(ctx context.Context) ([]models.Painting, error) {
	var paintings []models.Painting
	if err := c.db.WithContext(ctx).Where("is_sold = ?", false).Order("id DESC").Find(&paintings).Error; err != nil {
		log.Error("failed to list available paintings", "error", err)
		return nil, err
	}
	return paintings, nil
}

// ListAvailableByCategory returns the unsold paintings of one category.
func (c *Client) ListAvailableByCategory(ctx context.Context, categoryID uint) ([]models.Painting, error) {
	var paintings []models.Painting
	err := c.db.WithContext(ctx).
		Where("category_id = ? AND is_sold = ?", categoryID, false).
		Order("id DESC").
		Find(&paintings).Error
	if err != nil {
		log.Error("failed to list paintings by category", "error", err)
		return nil, err
	}
	return paintings, nil
}

// UpdatePainting overwrites all mutable fields of the painting.
func (c *Client) UpdatePainting(ctx context.Context, painting *models.Painting) error {
	err := c.db.WithContext(ctx).Model(painting).
		Select("title", "description", "price", "image_url", "category_id").
		Updates(painting).Error
	if err != nil {
		log.Error("failed to update painting", "error", err)
		return err
	}
	return nil
}

func (c *Client) DeletePainting(ctx context.Context, id uint) error {
	painting, err := c.GetPaintingByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).Unscoped().Delete(painting).Error; err != nil {
		log.Error("failed to delete painting", "error", err)
		return err
	}
	return nil
}

// ToggleSold flips the sold flag and returns the updated painting.
func (c *Client) ToggleSold(ctx context.Context, id uint) (*models.Painting, error) {
	painting, err := c.GetPaintingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = c.db.WithContext(ctx).Model(painting).
		Update("is_sold", !painting.IsSold).Error
	if err != nil {
		log.Error("failed to toggle sold state", "error", err)
		return nil, err
	}
	return painting, nil
}
