package relational

import (
	"time"

	"github.com/google/uuid"
)

type UserModel struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string   `gorm:"uniqueIndex;size:320;not null"`
	Password  string   `gorm:"size:255;not null"`
	Watchlist []string `gorm:"type:text;serializer:json"`
}

func (UserModel) TableName() string {
	return "users"
}
