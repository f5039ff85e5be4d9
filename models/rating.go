package models

// ItemRating is a wear log entry for a single clothing item: how the owner
// rated it, whether they liked it, and an optional note. Entries accumulate
// over time so an item can carry many of them.
type ItemRating struct {
	JsonModel
	Owner       UserAccount  `json:"-"`
	OwnerID     uint         `json:"-"`
	Item        ClothingItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ItemID      uint         `json:"item_id"`
	Rating      *int         `json:"rating"`
	Description *string      `gorm:"type:text" json:"description"`
	Liked       bool         `gorm:"default:false" json:"liked"`
}
