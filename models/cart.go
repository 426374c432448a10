package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cart is the server-held session cart. It survives page reloads for the
// lifetime of the session token and expires after the configured TTL.
type Cart struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	SessionToken string     `json:"session_token" gorm:"uniqueIndex;not null"`
	Items        []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Extra is a selectable add-on with a price delta in cents.
type Extra struct {
	Name       string `json:"name"`
	DeltaCents int64  `json:"delta_cents"`
}

// Customizations are the option choices attached to a cart line.
type Customizations struct {
	SelectedSize        string  `json:"selected_size,omitempty"`
	CookingPoint        string  `json:"cooking_point,omitempty"`
	Extras              []Extra `json:"extras,omitempty"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// DeltaCents is the summed price delta of all extras.
func (c Customizations) DeltaCents() int64 {
	var d int64
	for _, e := range c.Extras {
		d += e.DeltaCents
	}
	return d
}

// Fingerprint canonicalizes the choices so identical configurations merge
// into one cart line. Extras are order-insensitive.
func (c Customizations) Fingerprint() string {
	names := make([]string, 0, len(c.Extras))
	for _, e := range c.Extras {
		names = append(names, e.Name+":"+strconv.FormatInt(e.DeltaCents, 10))
	}
	sort.Strings(names)
	raw := strings.Join([]string{c.SelectedSize, c.CookingPoint, strings.Join(names, ","), c.SpecialInstructions}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8])
}

type CartItem struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CartID         uint           `json:"cart_id" gorm:"not null;index:idx_cart_line,unique"`
	ProductID      uint           `json:"product_id" gorm:"not null;index:idx_cart_line,unique"`
	Product        *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Fingerprint    string         `json:"-" gorm:"not null;index:idx_cart_line,unique"`
	Customizations Customizations `json:"customizations" gorm:"serializer:json"`
	Quantity       int            `json:"quantity" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
