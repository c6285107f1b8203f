package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint       `gorm:"index:idx_appointment_shop_start" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	StaffID uint `gorm:"index:idx_appointment_staff_start" json:"staff_id"`
	Staff   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"staff"`

	CustomerID uint     `json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"customer"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	StartTime time.Time `gorm:"index:idx_appointment_staff_start;index:idx_appointment_shop_start;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status     string  `gorm:"size:10;default:'PENDING';index" json:"status"`
	FinalPrice float64 `json:"final_price"`

	Notes       string     `gorm:"size:255" json:"notes"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
