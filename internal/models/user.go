package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Nil for CLIENT and ADMIN accounts, which are not bound to a barbershop.
	BarbershopID *uint      `gorm:"index" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:10;default:'CLIENT'" json:"role"`
	Active       bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopID returns the barbershop the user works at, or 0.
func (u *User) ShopID() uint {
	if u == nil || u.BarbershopID == nil {
		return 0
	}
	return *u.BarbershopID
}
