package models

// UserAccount is the verified identity behind every request. Sign-in itself
// happens in the auth service; this API only resolves the token subject.
type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"INVITATION_PENDING", "STARTED_AUTH", "FINISHED_AUTH"
	Status    string `json:"-"`
	AvatarURL string `json:"avatar_url"`
}
