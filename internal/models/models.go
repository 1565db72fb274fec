package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:50;not null"              json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null"             json:"-"`
	Confirmed    bool      `gorm:"default:false"                 json:"confirmed"`
	RefreshToken *string   `gorm:"size:512"                      json:"-"`
	AvatarURL    *string   `gorm:"size:255"                      json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type Contact struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName   string    `gorm:"size:50;not null"         json:"first_name"`
	LastName    string    `gorm:"size:100;not null"        json:"last_name"`
	Email       string    `gorm:"size:100;not null"        json:"email"`
	PhoneNumber string    `gorm:"size:15;not null"         json:"phone_number"`
	Birthday    time.Time `gorm:"type:date;not null"       json:"birthday"`
	UserID      uint      `gorm:"index;not null"           json:"user_id"`
}
