package models

import "time"

type Payment struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	AppointmentID uint        `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BarbershopID  uint        `gorm:"index" json:"barbershop_id"`

	Amount        float64    `json:"amount"`
	Method        string     `gorm:"size:15;default:'PIX'" json:"method"`
	Status        string     `gorm:"size:10;default:'PENDING'" json:"status"`
	TransactionID string     `gorm:"size:36;uniqueIndex" json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at"`
	RefundedAt    *time.Time `json:"refunded_at"`
	Notes         string     `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
