package models

import (
	"regexp"

	"github.com/go-playground/validator"
	"github.com/lib/pq"
)

type OutfitStatus string

const (
	StatusSuggested OutfitStatus = "suggested"
	StatusWorn      OutfitStatus = "worn"
	StatusDisliked  OutfitStatus = "disliked"
)

func (s OutfitStatus) Valid() bool {
	return s == StatusSuggested || s == StatusWorn || s == StatusDisliked
}

// CanTransitionTo reports whether a stored outfit may move to target.
// Outfits are born suggested; once they leave that state there is no way
// back. Between worn and disliked the user may flip freely.
func (s OutfitStatus) CanTransitionTo(target OutfitStatus) bool {
	if !target.Valid() {
		return false
	}
	if target == StatusSuggested {
		return s == StatusSuggested
	}
	return true
}

func (s *OutfitStatus) Scan(value interface{}) error {
	*s = OutfitStatus(value.(string))
	return nil
}

func (s OutfitStatus) Value() string {
	return string(s)
}

func ValidateOutfitStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	matched, _ := regexp.MatchString("^suggested|worn|disliked$", string(value))
	return matched
}

// Outfit is a named combination of wardrobe items. ItemIDs is the canonical
// record and never changes after creation; Items is resolved from it at read
// time, and items deleted from the wardrobe are simply absent there.
type Outfit struct {
	JsonModel
	Name    string         `json:"name"`
	Owner   UserAccount    `json:"-"`
	OwnerID uint           `json:"-"`
	ItemIDs pq.Int64Array  `gorm:"type:bigint[]" json:"item_ids"`
	Status  OutfitStatus   `json:"status"`
	Items   []ClothingItem `gorm:"-" json:"items"`
}
