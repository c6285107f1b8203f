package models

import "time"

// WeeklySchedule is the working-hours template of one staff member at one
// barbershop for one weekday (0 = Sunday). StartTime and EndTime are "HH:MM".
type WeeklySchedule struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	StaffID      uint `gorm:"uniqueIndex:idx_schedule_staff_shop_weekday;not null" json:"staff_id"`
	BarbershopID uint `gorm:"uniqueIndex:idx_schedule_staff_shop_weekday;not null" json:"barbershop_id"`
	Weekday      int  `gorm:"uniqueIndex:idx_schedule_staff_shop_weekday;not null" json:"weekday"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
	Enabled   bool   `gorm:"default:true" json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
