package domain

import "github.com/shopspring/decimal"

// LineItem is one brew held in the cart together with its quantity.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Image       *Image          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// LineItemFromBrew returns a line item for brew with quantity 1.
func LineItemFromBrew(b Brew) LineItem {
	return LineItem{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Image:       b.Image,
		Price:       b.Price,
		Quantity:    1,
	}
}
