package payment

import (
	"time"
)

const Provider = "NINEPAY"

// Local payment states.
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Gateway result codes carried in Callback.Status.
const (
	ResultSuccess   = 5
	ResultFailed    = 6
	ResultCancelled = 8
)

type Payment struct {
	ID          int64
	RequestCode string
	Amount      string
	Description string
	RedirectURL string
	Status      string
	PaymentNo   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Callback is the decoded result payload 9Pay posts back after a portal
// payment finishes.
type Callback struct {
	PaymentNo     int64   `json:"payment_no"`
	InvoiceNo     string  `json:"invoice_no"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        int     `json:"status"`
	Method        string  `json:"method"`
	Description   string  `json:"description"`
	CardBrand     string  `json:"card_brand,omitempty"`
	CardName      string  `json:"card_name,omitempty"`
	CreatedAt     string  `json:"created_at"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// LocalStatus maps the gateway result code onto a local payment state.
func (c Callback) LocalStatus() string {
	switch c.Status {
	case ResultSuccess:
		return StatusPaid
	case ResultFailed:
		return StatusFailed
	case ResultCancelled:
		return StatusCancelled
	}
	return StatusPending
}
