package dto

import "time"

type AvailabilityDTO struct {
	Date        string   `json:"date"`
	StaffID     uint     `json:"staff_id"`
	DurationMin int      `json:"duration_min"`
	Slots       []string `json:"slots"`
}

type StaffSlotsDTO struct {
	StaffID   uint     `json:"staff_id"`
	StaffName string   `json:"staff_name"`
	Slots     []string `json:"slots"`
}

// ShopAvailabilityDTO groups a day's free slots by staff member.
type ShopAvailabilityDTO struct {
	Date        string          `json:"date"`
	DurationMin int             `json:"duration_min"`
	Staff       []StaffSlotsDTO `json:"staff"`
}

type StaffDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type NextSlotDTO struct {
	Available bool       `json:"available"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Date      string     `json:"date,omitempty"`
	Time      string     `json:"time,omitempty"`
}
