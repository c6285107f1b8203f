package dto

import "time"

type AppointmentListDTO struct {
	ID            uint      `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	ServiceName   string    `json:"service_name"`
	StaffID       uint      `json:"staff_id"`
	StaffName     string    `json:"staff_name"`
	FinalPrice    float64   `json:"final_price"`
}
