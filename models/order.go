package models

import "time"

// OrderStatus mirrors the storefront lifecycle: orders start pending, move
// forward only, and end in a terminal state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	Code           string               `json:"code" gorm:"uniqueIndex;not null"`
	IdempotencyKey string               `json:"-" gorm:"uniqueIndex;not null"`
	CustomerName   string               `json:"customer_name" gorm:"not null"`
	CustomerEmail  string               `json:"customer_email" gorm:"not null;index"`
	CustomerPhone  string               `json:"customer_phone" gorm:"not null"`
	Lines          []OrderLine          `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
	SubtotalCents  int64                `json:"subtotal_cents" gorm:"not null"`
	TaxCents       int64                `json:"tax_cents" gorm:"not null"`
	TotalCents     int64                `json:"total_cents" gorm:"not null"`
	Status         OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	PaymentStatus  PaymentStatus        `json:"payment_status" gorm:"not null;default:'pending';index"`
	PickupEstimate string               `json:"pickup_estimate"`
	Instructions   string               `json:"special_instructions"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderLine is a snapshot of a cart line at checkout. Name and unit price
// are copied so later product edits never alter historical orders.
type OrderLine struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrderID        uint           `json:"order_id" gorm:"not null;index"`
	ProductID      uint           `json:"product_id" gorm:"not null;index"`
	ProductName    string         `json:"product_name" gorm:"not null"`
	UnitPriceCents int64          `json:"unit_price_cents" gorm:"not null"`
	Quantity       int            `json:"quantity" gorm:"not null"`
	LineTotalCents int64          `json:"line_total_cents" gorm:"not null"`
	Customizations Customizations `json:"customizations" gorm:"serializer:json"`
}

// OrderStatusHistory records every transition for audit.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
