package services

import (
	"sort"
	"strconv"
	"strings"

	"combineapi/models"
)

// ExcludedItem carries enough per-item detail for the generator to reason
// about why a combination was rejected (colors, categories, seasons), not
// just which exact ID sets to avoid.
type ExcludedItem struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Category models.Category `json:"category"`
	Color    string          `json:"color"`
	Season   string          `json:"season"`
}

type ExcludedOutfit struct {
	ID     uint                `json:"id"`
	Status models.OutfitStatus `json:"status"`
	Items  []ExcludedItem      `json:"items"`
}

// ExclusionSet holds the previously suggested or disliked combinations of a
// single user. Two outfits count as the same combination iff their item-ID
// sets are equal, order ignored.
type ExclusionSet struct {
	keys    map[string]struct{}
	Outfits []ExcludedOutfit
}

// BuildExclusionSet derives the exclusion set from already-filtered history
// rows. Keys come from the raw ItemIDs so outfits referencing since-deleted
// items still block their combination; detail rows come from whatever items
// could be resolved.
func BuildExclusionSet(outfits []models.Outfit) *ExclusionSet {
	set := &ExclusionSet{keys: map[string]struct{}{}}
	for _, outfit := range outfits {
		ids := make([]uint, 0, len(outfit.ItemIDs))
		for _, id := range outfit.ItemIDs {
			ids = append(ids, uint(id))
		}
		set.keys[combinationKey(ids)] = struct{}{}

		excluded := ExcludedOutfit{ID: outfit.ID, Status: outfit.Status}
		for _, item := range outfit.Items {
			excluded.Items = append(excluded.Items, ExcludedItem{
				ID:       item.ID,
				Name:     item.Name,
				Category: item.Category,
				Color:    item.Color,
				Season:   item.Season,
			})
		}
		set.Outfits = append(set.Outfits, excluded)
	}
	return set
}

// Contains reports whether ids, as an unordered set, is already excluded.
func (s *ExclusionSet) Contains(ids []uint) bool {
	_, ok := s.keys[combinationKey(ids)]
	return ok
}

func (s *ExclusionSet) Size() int {
	return len(s.keys)
}

// combinationKey canonicalizes ids as a set: duplicates collapse, order is
// ignored, so [1,1,2,3] and [3,2,1] produce the same key.
func combinationKey(ids []uint) string {
	unique := map[uint]struct{}{}
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]uint, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
