package models

type ClothingItem struct {
	JsonModel
	Name             string      `json:"name"`
	Description      *string     `gorm:"type:text" json:"description"`
	Category         Category    `json:"category"` // top, bottom, shoes, outerwear, accessory
	SubCategory      *string     `json:"sub_category"`
	Color            string      `json:"color"`
	Season           string      `json:"season"` // spring, summer, fall, winter, all
	Material         *string     `json:"material"`
	Brand            *string     `json:"brand"`
	Size             *string     `json:"size"`
	TemperatureRange *string     `json:"temperature_range"` // e.g. "10-20"
	Owner            UserAccount `json:"-"`
	OwnerID          uint        `json:"-"`
	IsActive         bool        `gorm:"default:true" json:"is_active"`
	ImageURL         *string     `json:"image_url"`
}
