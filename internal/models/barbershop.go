package models

import "time"

type Barbershop struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	Slug              string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description       string    `gorm:"type:text" json:"description"`
	Phone             string    `gorm:"size:20" json:"phone"`
	Email             string    `gorm:"size:100" json:"email"`
	Address           string    `gorm:"size:255" json:"address"`
	Timezone          string    `gorm:"size:64;default:'America/Sao_Paulo'" json:"timezone"`
	MinAdvanceMinutes int       `gorm:"default:120" json:"min_advance_minutes"`
	LogoKey           string    `gorm:"size:255" json:"logo_key"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
