package models

import "time"

type Review struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	BarbershopID  uint `gorm:"uniqueIndex:idx_review_unique;not null" json:"barbershop_id"`
	CustomerID    uint `gorm:"uniqueIndex:idx_review_unique;not null" json:"customer_id"`
	StaffID       uint `gorm:"uniqueIndex:idx_review_unique;not null" json:"staff_id"`
	ServiceID     uint `gorm:"uniqueIndex:idx_review_unique;not null" json:"service_id"`
	AppointmentID uint `json:"appointment_id"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
