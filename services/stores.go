package services

import (
	"context"
	"errors"
	"fmt"

	"combineapi/models"

	"gorm.io/gorm"
)

// GormWardrobeStore reads clothing items from Postgres.
type GormWardrobeStore struct {
	DB *gorm.DB
}

func (s *GormWardrobeStore) ListActiveItems(ctx context.Context, ownerID uint) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? and is_active = ?", ownerID, true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GormOutfitStore persists outfits. ItemIDs is the canonical record; Items is
// populated on reads from whatever referenced items still exist.
type GormOutfitStore struct {
	DB *gorm.DB
}

func (s *GormOutfitStore) ListByStatus(ctx context.Context, ownerID uint, statuses []models.OutfitStatus) ([]models.Outfit, error) {
	var outfits []models.Outfit
	query := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(statuses) > 0 {
		query = query.Where("status in ?", statuses)
	}
	if err := query.Order("id desc").Find(&outfits).Error; err != nil {
		return nil, err
	}
	if err := s.populateItems(ctx, outfits); err != nil {
		return nil, err
	}
	return outfits, nil
}

func (s *GormOutfitStore) Save(ctx context.Context, outfit *models.Outfit) error {
	return s.DB.WithContext(ctx).Save(outfit).Error
}

func (s *GormOutfitStore) FindByID(ctx context.Context, ownerID uint, outfitID uint) (*models.Outfit, error) {
	var outfit models.Outfit
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&outfit, outfitID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, err
	}
	batch := []models.Outfit{outfit}
	if err := s.populateItems(ctx, batch); err != nil {
		return nil, err
	}
	return &batch[0], nil
}

// populateItems resolves Items from ItemIDs for a batch of outfits with a
// single query. Deleted items are skipped silently, the raw IDs stay intact.
func (s *GormOutfitStore) populateItems(ctx context.Context, outfits []models.Outfit) error {
	idSet := map[int64]struct{}{}
	for _, outfit := range outfits {
		for _, id := range outfit.ItemIDs {
			idSet[id] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	var items []models.ClothingItem
	if err := s.DB.WithContext(ctx).Where("id in ?", ids).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to resolve outfit items: %w", err)
	}
	byID := make(map[int64]models.ClothingItem, len(items))
	for _, item := range items {
		byID[int64(item.ID)] = item
	}
	for i := range outfits {
		resolved := make([]models.ClothingItem, 0, len(outfits[i].ItemIDs))
		for _, id := range outfits[i].ItemIDs {
			if item, ok := byID[id]; ok {
				resolved = append(resolved, item)
			}
		}
		outfits[i].Items = resolved
	}
	return nil
}
