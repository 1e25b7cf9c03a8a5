package model

import (
	"time"
)

type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
}
