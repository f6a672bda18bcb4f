package domain

import "github.com/shopspring/decimal"

type Image struct {
	URL string `json:"url"`
}

type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       *Image `json:"image,omitempty"`
	Brews       []Brew `json:"brews,omitempty"`
}

type Brew struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       *Image          `json:"image,omitempty"`
}
