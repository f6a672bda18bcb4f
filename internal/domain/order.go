package domain

// ShippingDetails holds the checkout form fields.
type ShippingDetails struct {
	Address           string `json:"address"`
	PostalCode        string `json:"postalCode"`
	City              string `json:"city"`
	ConfirmationEmail string `json:"confirmationEmailAddress"`
}

// Order is the record submitted to the content API. Amount is in minor units.
type Order struct {
	Amount     int64      `json:"amount"`
	Brews      []LineItem `json:"brews"`
	Address    string     `json:"address"`
	PostalCode string     `json:"postalCode"`
	City       string     `json:"city"`
	Token      string     `json:"token"`
}

// PaymentCard carries raw card details on their way to the tokenizer. It is
// never persisted.
type PaymentCard struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	CVC      string `json:"cvc"`
}

// Email is a transactional email dispatch request.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}
