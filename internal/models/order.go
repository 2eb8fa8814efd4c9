package models

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a purchased line. It never references a live catalog entry.
type OrderItem struct {
	ID       uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID  string  `json:"-" gorm:"index;type:varchar(36);not null"`
	Name     string  `json:"name" gorm:"not null"`
	Price    float64 `json:"price" gorm:"not null"` // Price at the time of order
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity" gorm:"not null;default:1"`
}

// Address is the delivery address attached to an order.
type Address struct {
	Village  string `json:"village"`
	StreetNo string `json:"streetNo"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// IsComplete reports whether the fields required at checkout are present.
func (a Address) IsComplete() bool {
	return a.Village != "" && a.City != "" && a.State != "" && a.Pincode != ""
}

// Order represents a placed customer order.
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string      `json:"userId" gorm:"index;type:varchar(36);not null"`
	User      *Account    `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total     float64     `json:"total" gorm:"not null"`
	Address   Address     `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
