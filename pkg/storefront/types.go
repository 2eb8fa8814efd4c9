package storefront

import "time"

// Account is the public view of a registered account.
type Account struct {
	ID           string    `json:"id"`
	Identifier   string    `json:"identifier"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile"`
	ProfileImage string    `json:"profileImage"`
	Address      string    `json:"address"`
	Cart         []Line    `json:"cart"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Mobile       *string `json:"mobile,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// Address is a delivery address.
type Address struct {
	Village  string `json:"village"`
	StreetNo string `json:"streetNo"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// Complete reports whether the fields checkout requires are present.
func (a Address) Complete() bool {
	return a.Village != "" && a.City != "" && a.State != "" && a.Pincode != ""
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

// Order is an order as returned by the server.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	User      *Account    `json:"user,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Address   Address     `json:"address"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderRequest is the body of an order creation call.
type OrderRequest struct {
	UserID  string      `json:"userId"`
	Items   []OrderItem `json:"items"`
	Total   float64     `json:"total"`
	Address *Address    `json:"address,omitempty"`
}
