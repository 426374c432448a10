package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID              uint                       `json:"id" gorm:"primaryKey"`
	Code            string                     `json:"code" gorm:"uniqueIndex;not null"`
	CustomerName    string                     `json:"customer_name" gorm:"not null"`
	CustomerEmail   string                     `json:"customer_email" gorm:"not null;index"`
	CustomerPhone   string                     `json:"customer_phone" gorm:"not null"`
	ReservationDate string                     `json:"reservation_date" gorm:"not null"` // YYYY-MM-DD
	ReservationTime string                     `json:"reservation_time" gorm:"not null"` // HH:MM
	PartySize       int                        `json:"party_size" gorm:"not null"`
	SpecialRequests string                     `json:"special_requests"`
	Status          ReservationStatus          `json:"status" gorm:"not null;default:'pending';index"`
	StatusHistory   []ReservationStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:ReservationID"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

type ReservationStatusHistory struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ReservationID uint              `json:"reservation_id" gorm:"not null;index"`
	FromStatus    ReservationStatus `json:"from_status"`
	ToStatus      ReservationStatus `json:"to_status" gorm:"not null"`
	ChangedBy     string            `json:"changed_by"`
	Note          string            `json:"note"`
	CreatedAt     time.Time         `json:"created_at"`
}
