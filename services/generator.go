package services

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"combineapi/models"
)

// OutfitGenerator proposes a new combination of wardrobe item IDs. Any
// implementation must only use IDs present in items, must never repeat a
// combination from exclusions, and must not persist anything itself. An empty
// result means the generator gave up.
type OutfitGenerator interface {
	Propose(ctx context.Context, items []models.ClothingItem, exclusions *ExclusionSet) ([]uint, error)
}

// GeneratorFromEnv picks the configured generator. The rules engine is the
// default so the API works without a Google API key.
func GeneratorFromEnv() OutfitGenerator {
	if GetEnv("OUTFIT_GENERATOR", "rules") == "gemini" {
		if os.Getenv("GOOGLE_API_KEY") != "" {
			return NewGeminiOutfitGenerator()
		}
		fmt.Println("OUTFIT_GENERATOR=gemini requested without GOOGLE_API_KEY, falling back to the rules engine")
	}
	return NewRulesEngineGenerator()
}

const defaultMaxAttempts = 12

var requiredCategories = []models.Category{
	models.CategoryTop,
	models.CategoryBottom,
	models.CategoryShoes,
}

var optionalCategories = []models.Category{
	models.CategoryOuterwear,
	models.CategoryAccessory,
}

// RulesEngineGenerator composes outfits locally: one item per required
// category, optional layers sometimes, season-compatible picks preferred.
// It resamples up to MaxAttempts times before giving up on finding a
// combination outside the exclusion set.
type RulesEngineGenerator struct {
	MaxAttempts int
	rand        *rand.Rand
}

func NewRulesEngineGenerator() *RulesEngineGenerator {
	return &RulesEngineGenerator{
		MaxAttempts: defaultMaxAttempts,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *RulesEngineGenerator) Propose(ctx context.Context, items []models.ClothingItem, exclusions *ExclusionSet) ([]uint, error) {
	byCategory := map[models.Category][]models.ClothingItem{}
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	for _, category := range requiredCategories {
		if len(byCategory[category]) == 0 {
			fmt.Printf("[RulesEngine] No %s items available, cannot compose an outfit\n", category)
			return nil, nil
		}
	}

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := g.sample(byCategory)
		if !exclusions.Contains(candidate) {
			return candidate, nil
		}
	}
	fmt.Printf("[RulesEngine] Gave up after %d attempts, %d combinations excluded\n", attempts, exclusions.Size())
	return nil, nil
}

func (g *RulesEngineGenerator) sample(byCategory map[models.Category][]models.ClothingItem) []uint {
	top := byCategory[models.CategoryTop][g.rand.Intn(len(byCategory[models.CategoryTop]))]
	season := top.Season

	candidate := []uint{top.ID}
	for _, category := range requiredCategories[1:] {
		pick := g.pickCompatible(byCategory[category], season)
		candidate = append(candidate, pick.ID)
	}
	for _, category := range optionalCategories {
		if len(byCategory[category]) == 0 || g.rand.Intn(2) == 0 {
			continue
		}
		pick := g.pickCompatible(byCategory[category], season)
		candidate = append(candidate, pick.ID)
	}
	return candidate
}

// pickCompatible prefers items matching the anchor season (or all-season
// items), falling back to the full pool when nothing matches.
func (g *RulesEngineGenerator) pickCompatible(candidates []models.ClothingItem, season string) models.ClothingItem {
	var compatible []models.ClothingItem
	for _, item := range candidates {
		if seasonMatches(item.Season, season) {
			compatible = append(compatible, item)
		}
	}
	if len(compatible) == 0 {
		compatible = candidates
	}
	return compatible[g.rand.Intn(len(compatible))]
}

func seasonMatches(itemSeason, anchorSeason string) bool {
	if itemSeason == "" || anchorSeason == "" {
		return true
	}
	if itemSeason == "all" || itemSeason == "all-season" {
		return true
	}
	if anchorSeason == "all" || anchorSeason == "all-season" {
		return true
	}
	return itemSeason == anchorSeason
}
