package models

import "time"

// Customer is a person as seen by one barbershop. It may be linked to a
// CLIENT account or exist only as name + phone from a walk-in booking.
type Customer struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	BarbershopID uint  `gorm:"uniqueIndex:idx_customer_shop_phone;not null" json:"barbershop_id"`
	UserID       *uint `gorm:"index" json:"user_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;uniqueIndex:idx_customer_shop_phone" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	LastVisit *time.Time `json:"last_visit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
