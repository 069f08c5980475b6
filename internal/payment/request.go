package payment

const DefaultCurrency = "VND"

// Payloader is implemented by every request sent to the gateway.
type Payloader interface {
	ToPayload() map[string]any
}

// CreatePaymentRequest opens a hosted portal payment session.
type CreatePaymentRequest struct {
	RequestCode string
	Amount      string
	Description string
	BackURL     string
	ReturnURL   string
}

func (r *CreatePaymentRequest) ToPayload() map[string]any {
	p := map[string]any{
		"request_code": r.RequestCode,
		"amount":       r.Amount,
		"description":  r.Description,
	}
	if r.BackURL != "" {
		p["back_url"] = r.BackURL
	}
	if r.ReturnURL != "" {
		p["return_url"] = r.ReturnURL
	}
	return p
}

func (r *CreatePaymentRequest) complete() bool {
	return r != nil && r.Amount != "" && r.RequestCode != "" && r.Description != ""
}

type Card struct {
	Number     string
	HolderName string
	ExpMonth   int
	ExpYear    int
	CVV        string
}

func (c Card) ToPayload() map[string]any {
	return map[string]any{
		"card_number": c.Number,
		"hold_name":   c.HolderName,
		"exp_month":   c.ExpMonth,
		"exp_year":    c.ExpYear,
		"cvv":         c.CVV,
	}
}

type Installment struct {
	AmountOriginal float64
	BankCode       string
	Period         int
}

func (i Installment) ToPayload() map[string]any {
	period := i.Period
	if period == 0 {
		period = 12
	}
	return map[string]any{
		"amount_original": i.AmountOriginal,
		"bank_code":       i.BankCode,
		"period":          period,
	}
}

// BankAccount is the destination of a refund paid out by bank transfer.
type BankAccount struct {
	Bank          string
	AccountNumber string
	AccountName   string
}

type RefundRequest struct {
	RequestID   string
	PaymentNo   int64
	Amount      float64
	Description string
	Currency    string
	Bank        *BankAccount
}

func NewRefundRequest(requestID string, paymentNo int64, amount float64, description string) (*RefundRequest, error) {
	if requestID == "" || paymentNo == 0 || amount == 0 || description == "" {
		return nil, ErrMissingRequiredFields
	}
	return &RefundRequest{
		RequestID:   requestID,
		PaymentNo:   paymentNo,
		Amount:      amount,
		Description: description,
		Currency:    DefaultCurrency,
	}, nil
}

func (r *RefundRequest) WithBank(bank, accountNumber, accountName string) *RefundRequest {
	r.Bank = &BankAccount{Bank: bank, AccountNumber: accountNumber, AccountName: accountName}
	return r
}

func (r *RefundRequest) ToPayload() map[string]any {
	p := map[string]any{
		"request_id":  r.RequestID,
		"payment_no":  r.PaymentNo,
		"amount":      r.Amount,
		"description": r.Description,
		"currency":    currencyOrDefault(r.Currency),
	}
	if r.Bank != nil {
		p["bank"] = r.Bank.Bank
		p["account_number"] = r.Bank.AccountNumber
		p["customer_name"] = r.Bank.AccountName
	}
	return p
}

// PayerAuthRequest starts 3-D Secure payer authentication for an
// installment card payment.
type PayerAuthRequest struct {
	RequestID   string
	Amount      float64
	Currency    string
	Installment Installment
	Card        Card
	ReturnURL   string
}

func NewPayerAuthRequest(requestID string, amount float64, installment Installment, card Card, returnURL string) (*PayerAuthRequest, error) {
	if requestID == "" || amount == 0 || installment.BankCode == "" || card.Number == "" || returnURL == "" {
		return nil, ErrMissingRequiredFields
	}
	return &PayerAuthRequest{
		RequestID:   requestID,
		Amount:      amount,
		Currency:    DefaultCurrency,
		Installment: installment,
		Card:        card,
		ReturnURL:   returnURL,
	}, nil
}

func (r *PayerAuthRequest) ToPayload() map[string]any {
	return map[string]any{
		"request_id":  r.RequestID,
		"currency":    currencyOrDefault(r.Currency),
		"amount":      r.Amount,
		"installment": r.Installment.ToPayload(),
		"card":        r.Card.ToPayload(),
		"return_url":  r.ReturnURL,
	}
}

type AuthorizeCardPaymentRequest struct {
	RequestID string
	OrderCode int64
	Amount    float64
	Currency  string
	Card      *Card
}

func NewAuthorizeCardPaymentRequest(requestID string, orderCode int64, amount float64) (*AuthorizeCardPaymentRequest, error) {
	if requestID == "" || orderCode == 0 || amount == 0 {
		return nil, ErrMissingRequiredFields
	}
	return &AuthorizeCardPaymentRequest{
		RequestID: requestID,
		OrderCode: orderCode,
		Amount:    amount,
		Currency:  DefaultCurrency,
	}, nil
}

func (r *AuthorizeCardPaymentRequest) WithCard(card Card) *AuthorizeCardPaymentRequest {
	r.Card = &card
	return r
}

func (r *AuthorizeCardPaymentRequest) ToPayload() map[string]any {
	p := orderPayload(r.RequestID, r.OrderCode, r.Amount, r.Currency)
	if r.Card != nil {
		p["card"] = r.Card.ToPayload()
	}
	return p
}

type ReverseCardPaymentRequest struct {
	RequestID string
	OrderCode int64
	Amount    float64
	Currency  string
}

func NewReverseCardPaymentRequest(requestID string, orderCode int64, amount float64) (*ReverseCardPaymentRequest, error) {
	if requestID == "" || orderCode == 0 || amount == 0 {
		return nil, ErrMissingRequiredFields
	}
	return &ReverseCardPaymentRequest{RequestID: requestID, OrderCode: orderCode, Amount: amount, Currency: DefaultCurrency}, nil
}

func (r *ReverseCardPaymentRequest) ToPayload() map[string]any {
	return orderPayload(r.RequestID, r.OrderCode, r.Amount, r.Currency)
}

type CapturePaymentRequest struct {
	RequestID string
	OrderCode int64
	Amount    float64
	Currency  string
}

func NewCapturePaymentRequest(requestID string, orderCode int64, amount float64) (*CapturePaymentRequest, error) {
	if requestID == "" || orderCode == 0 || amount == 0 {
		return nil, ErrMissingRequiredFields
	}
	return &CapturePaymentRequest{RequestID: requestID, OrderCode: orderCode, Amount: amount, Currency: DefaultCurrency}, nil
}

func (r *CapturePaymentRequest) ToPayload() map[string]any {
	return orderPayload(r.RequestID, r.OrderCode, r.Amount, r.Currency)
}

func orderPayload(requestID string, orderCode int64, amount float64, currency string) map[string]any {
	return map[string]any{
		"request_id": requestID,
		"order_code": orderCode,
		"amount":     amount,
		"currency":   currencyOrDefault(currency),
	}
}

func currencyOrDefault(c string) string {
	if c == "" {
		return DefaultCurrency
	}
	return c
}
