package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"combineapi/models"

	"github.com/getsentry/sentry-go"
)

// MinWardrobeItems is the floor below which generation is not attempted at all.
const MinWardrobeItems = 3

const defaultGenerationTimeout = 30 * time.Second

// WardrobeStore reads the clothing items generation can draw from.
type WardrobeStore interface {
	ListActiveItems(ctx context.Context, ownerID uint) ([]models.ClothingItem, error)
}

// OutfitStore persists outfits and reads them back with items populated.
type OutfitStore interface {
	ListByStatus(ctx context.Context, ownerID uint, statuses []models.OutfitStatus) ([]models.Outfit, error)
	Save(ctx context.Context, outfit *models.Outfit) error
	FindByID(ctx context.Context, ownerID uint, outfitID uint) (*models.Outfit, error)
}

// OutfitPlanner owns the generation workflow: fetch wardrobe and history,
// build the exclusion set, run the generator under a deadline, validate the
// candidate and persist it as a new suggestion.
type OutfitPlanner struct {
	Wardrobe  WardrobeStore
	Outfits   OutfitStore
	Generator OutfitGenerator
	Timeout   time.Duration
}

func NewOutfitPlanner(wardrobe WardrobeStore, outfits OutfitStore, generator OutfitGenerator) *OutfitPlanner {
	timeout := time.Duration(GetEnvInt("GENERATION_TIMEOUT_SECONDS", int(defaultGenerationTimeout/time.Second))) * time.Second
	return &OutfitPlanner{
		Wardrobe:  wardrobe,
		Outfits:   outfits,
		Generator: generator,
		Timeout:   timeout,
	}
}

// Generate creates one new suggested outfit for the owner. The returned
// outfit has Items populated. Failure modes map to the sentinel errors in
// this package.
func (p *OutfitPlanner) Generate(ctx context.Context, ownerID uint) (*models.Outfit, error) {
	var (
		wg       sync.WaitGroup
		items    []models.ClothingItem
		history  []models.Outfit
		itemsErr error
		histErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemsErr = p.Wardrobe.ListActiveItems(ctx, ownerID)
	}()
	go func() {
		defer wg.Done()
		history, histErr = p.Outfits.ListByStatus(ctx, ownerID, []models.OutfitStatus{models.StatusDisliked, models.StatusSuggested})
	}()
	wg.Wait()
	if itemsErr != nil {
		sentry.CaptureException(itemsErr)
		return nil, fmt.Errorf("failed to load wardrobe: %w", itemsErr)
	}
	if histErr != nil {
		sentry.CaptureException(histErr)
		return nil, fmt.Errorf("failed to load outfit history: %w", histErr)
	}

	if len(items) < MinWardrobeItems {
		return nil, fmt.Errorf("%w: %d active items, need at least %d", ErrInsufficientWardrobe, len(items), MinWardrobeItems)
	}

	exclusions := BuildExclusionSet(history)

	genCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	candidate, err := p.Generator.Propose(genCtx, items, exclusions)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrGenerationTimeout
		}
		sentry.CaptureException(err)
		return nil, fmt.Errorf("outfit generation failed: %w", err)
	}
	if len(candidate) == 0 {
		return nil, ErrGenerationExhausted
	}

	owned := map[uint]struct{}{}
	for _, item := range items {
		owned[item.ID] = struct{}{}
	}
	ids := make([]int64, 0, len(candidate))
	seen := map[uint]struct{}{}
	for _, id := range candidate {
		if _, ok := owned[id]; !ok {
			err := fmt.Errorf("%w: item %d is not in the owner's active wardrobe", ErrInvalidCandidate, id)
			sentry.CaptureException(err)
			return nil, err
		}
		if _, dup := seen[id]; dup {
			err := fmt.Errorf("%w: item %d appears more than once", ErrInvalidCandidate, id)
			sentry.CaptureException(err)
			return nil, err
		}
		seen[id] = struct{}{}
		ids = append(ids, int64(id))
	}
	// generators already check exclusions, but the canonical record must
	// never duplicate an excluded combination
	if exclusions.Contains(candidate) {
		return nil, ErrGenerationExhausted
	}

	outfit := &models.Outfit{
		Name:    "New Outfit - " + time.Now().Format("Jan 2, 2006"),
		OwnerID: ownerID,
		ItemIDs: ids,
		Status:  models.StatusSuggested,
	}
	if err := p.Outfits.Save(ctx, outfit); err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("failed to save outfit: %w", err)
	}

	saved, err := p.Outfits.FindByID(ctx, ownerID, outfit.ID)
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("failed to reload outfit: %w", err)
	}
	return saved, nil
}

// UpdateStatus moves an outfit to the requested status after validating the
// transition. Returns the outfit with items populated.
func (p *OutfitPlanner) UpdateStatus(ctx context.Context, ownerID uint, outfitID uint, status models.OutfitStatus) (*models.Outfit, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	outfit, err := p.Outfits.FindByID(ctx, ownerID, outfitID)
	if err != nil {
		return nil, err
	}
	if !outfit.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot move from %q to %q", ErrInvalidStatus, outfit.Status, status)
	}
	outfit.Status = status
	if err := p.Outfits.Save(ctx, outfit); err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("failed to save outfit: %w", err)
	}
	return outfit, nil
}
