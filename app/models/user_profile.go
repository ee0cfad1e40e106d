package models

import "time"

// UserProfile holds per-identity data that is not owned by the identity
// provider. The ID is the identity subject (uid).
type UserProfile struct {
	ID              string     `gorm:"primaryKey;type:varchar(128)" json:"id" bson:"_id"`
	ChannelToken    *string    `gorm:"type:varchar(512);default:null" json:"fcmToken" bson:"channel_token"`
	LastTokenUpdate *time.Time `gorm:"default:null" json:"lastTokenUpdate" bson:"last_token_update"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt" bson:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasChannel reports whether a push channel token is registered.
func (p *UserProfile) HasChannel() bool {
	return p != nil && p.ChannelToken != nil && *p.ChannelToken != ""
}
