// Package api exposes the merchant-facing JSON endpoints backed by the 9Pay
// gateway.
package api

import (
	"errors"
	"net/http"
	"time"

	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/payment"
	"ninepay-gateway/internal/utils"

	"go.uber.org/zap"
)

const requestCodePrefix = "INV"

type Handler struct {
	Gateway payment.Gateway
	Repo    payment.Repository
}

func NewHandler(gateway payment.Gateway, repo payment.Repository) *Handler {
	return &Handler{Gateway: gateway, Repo: repo}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments", h.CreatePayment)
	mux.HandleFunc("GET /payments/{code}", h.GetPayment)
	mux.HandleFunc("GET /payments/{id}/inquiry", h.Inquiry)
	mux.HandleFunc("POST /refunds", h.Refund)
}

type createPaymentInput struct {
	RequestCode string `json:"request_code"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	BackURL     string `json:"back_url"`
	ReturnURL   string `json:"return_url"`
}

type paymentOutput struct {
	RequestCode string `json:"request_code"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	RedirectURL string `json:"redirect_url"`
	Status      string `json:"status"`
	PaymentNo   *int64 `json:"payment_no,omitempty"`
}

func toOutput(p *payment.Payment) paymentOutput {
	return paymentOutput{
		RequestCode: p.RequestCode,
		Amount:      p.Amount,
		Description: p.Description,
		RedirectURL: p.RedirectURL,
		Status:      p.Status,
		PaymentNo:   p.PaymentNo,
	}
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	var in createPaymentInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if in.RequestCode == "" {
		in.RequestCode = utils.NewRequestCode(requestCodePrefix, time.Now())
	}
	if err := utils.ValidateRequestCode(in.RequestCode); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Gateway.CreatePayment(ctx, &payment.CreatePaymentRequest{
		RequestCode: in.RequestCode,
		Amount:      in.Amount,
		Description: in.Description,
		BackURL:     in.BackURL,
		ReturnURL:   in.ReturnURL,
	})
	if err != nil {
		log.Error("Create payment failed", zap.Error(err))
		utils.WriteJSONError(w, "failed to create payment", http.StatusInternalServerError)
		return
	}
	if !res.Success {
		utils.WriteJSONError(w, res.Message, http.StatusBadRequest)
		return
	}

	redirectURL, _ := res.Data["redirect_url"].(string)
	p := &payment.Payment{
		RequestCode: in.RequestCode,
		Amount:      in.Amount,
		Description: in.Description,
		RedirectURL: redirectURL,
		Status:      payment.StatusPending,
	}
	if err := h.Repo.SavePayment(ctx, p); err != nil {
		log.Error("Failed to save payment", zap.String("request_code", p.RequestCode), zap.Error(err))
		utils.WriteJSONError(w, "failed to save payment", http.StatusInternalServerError)
		return
	}

	log.Info("Payment created", zap.String("request_code", p.RequestCode))
	utils.WriteJSON(w, http.StatusCreated, toOutput(p))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetPaymentByRequestCode(r.Context(), r.PathValue("code"))
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			utils.WriteJSONError(w, "payment not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("Failed to load payment", zap.Error(err))
		utils.WriteJSONError(w, "failed to load payment", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOutput(p))
}

func (h *Handler) Inquiry(w http.ResponseWriter, r *http.Request) {
	res, err := h.Gateway.Inquiry(r.Context(), r.PathValue("id"))
	if err != nil {
		logger.FromCtx(r.Context()).Error("Inquiry failed", zap.Error(err))
		utils.WriteJSONError(w, "inquiry failed", http.StatusInternalServerError)
		return
	}
	writeGatewayResponse(w, res)
}

type refundInput struct {
	RequestID     string  `json:"request_id"`
	PaymentNo     int64   `json:"payment_no"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Bank          string  `json:"bank"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"customer_name"`
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var in refundInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req, err := payment.NewRefundRequest(in.RequestID, in.PaymentNo, in.Amount, in.Description)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Bank != "" {
		req.WithBank(in.Bank, in.AccountNumber, in.AccountName)
	}

	res, err := h.Gateway.Refund(r.Context(), req)
	if err != nil {
		logger.FromCtx(r.Context()).Error("Refund failed", zap.Error(err))
		utils.WriteJSONError(w, "refund failed", http.StatusInternalServerError)
		return
	}
	writeGatewayResponse(w, res)
}

// writeGatewayResponse relays a normalized gateway response. Failures the
// gateway reported map to 502.
func writeGatewayResponse(w http.ResponseWriter, res *payment.Response) {
	code := http.StatusOK
	if !res.Success {
		code = http.StatusBadGateway
	}
	utils.WriteJSON(w, code, res)
}
