package domain

import (
	"time"

	"github.com/google/uuid"
)

// Size is the garment size attached to a product. Digital products carry
// an empty size.
type Size string

const (
	SizeXS Size = "XS"
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

// ValidSizes lists the selectable sizes in display order.
var ValidSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// Product represents a product in the catalog. Slug is the public,
// URL-safe identity; ID is the row identity.
type Product struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Slug              string    `json:"slug" db:"slug"`
	Description       string    `json:"description" db:"description"`
	Price             float64   `json:"price" db:"price"`
	PriceWithDiscount float64   `json:"price_with_discount" db:"price_with_discount"`
	Digital           bool      `json:"digital" db:"digital"`
	ImageURL          string    `json:"image_url" db:"image_url"`
	Category          string    `json:"category" db:"category"`
	Size              Size      `json:"size" db:"size"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePrice returns the price a buyer pays for one unit: the
// discounted price when one is set, the base price otherwise. A zero
// discount means "no discount", not "free".
func (p *Product) EffectivePrice() float64 {
	if p.PriceWithDiscount > 0 {
		return p.PriceWithDiscount
	}
	return p.Price
}
