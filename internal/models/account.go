package models

import "time"

// Account represents a registered shopper. Identifier is an email or a mobile number.
type Account struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Identifier   string     `json:"identifier" gorm:"uniqueIndex;type:varchar(255);not null"`
	SecretDigest string     `json:"-" gorm:"type:varchar(255);not null"` // Never serialized
	Name         string     `json:"name" gorm:"type:varchar(255);default:''"`
	Mobile       string     `json:"mobile" gorm:"type:varchar(50);default:''"`
	ProfileImage string     `json:"profileImage" gorm:"type:text;default:''"`
	Address      string     `json:"address" gorm:"type:text;default:''"`
	Cart         []CartLine `json:"cart" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CartLine is a pre-checkout line stored with the account that owns it.
type CartLine struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	AccountID string    `json:"-" gorm:"index;type:varchar(36);not null"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	Quantity  int       `json:"quantity" gorm:"default:1"`
	CreatedAt time.Time `json:"-"`
}

// ProfileUpdate holds the account fields that may be changed after signup.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Mobile       *string `json:"mobile"`
	ProfileImage *string `json:"profileImage"`
	Address      *string `json:"address"`
}

// Apply copies the non-nil fields of u onto a.
func (u ProfileUpdate) Apply(a *Account) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Mobile != nil {
		a.Mobile = *u.Mobile
	}
	if u.ProfileImage != nil {
		a.ProfileImage = *u.ProfileImage
	}
	if u.Address != nil {
		a.Address = *u.Address
	}
}

// Columns returns the column/value pairs touched by u.
func (u ProfileUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Mobile != nil {
		cols["mobile"] = *u.Mobile
	}
	if u.ProfileImage != nil {
		cols["profile_image"] = *u.ProfileImage
	}
	if u.Address != nil {
		cols["address"] = *u.Address
	}
	return cols
}
