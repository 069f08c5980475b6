package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/payment"
	"ninepay-gateway/internal/utils"

	"go.uber.org/zap"
)

// Handler receives 9Pay payment results, both the browser return and the
// server-to-server notification.
type Handler struct {
	Gateway payment.Gateway
	Repo    payment.Repository
}

func NewWebhookHandler(gateway payment.Gateway, repo payment.Repository) *Handler {
	return &Handler{
		Gateway: gateway,
		Repo:    repo,
	}
}

// CallbackHandler reads result and checksum from the query or form body.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("provider", payment.Provider))

	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form", http.StatusBadRequest)
		return
	}
	result := r.FormValue("result")
	checksum := r.FormValue("checksum")

	if !h.Gateway.Verify(result, checksum) {
		log.Warn("Callback checksum rejected", zap.Int("result_len", len(result)))
		utils.WriteJSONError(w, "invalid checksum", http.StatusUnauthorized)
		return
	}

	decoded := h.Gateway.DecodeResult(result)
	if decoded == "" {
		log.Warn("Callback result could not be decoded")
		utils.WriteJSONError(w, "invalid result", http.StatusBadRequest)
		return
	}

	var cb payment.Callback
	if err := json.Unmarshal([]byte(decoded), &cb); err != nil || cb.InvoiceNo == "" {
		log.Warn("Callback result is not a payment result", zap.Error(err))
		utils.WriteJSONError(w, "invalid result payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("invoice_no", cb.InvoiceNo),
		zap.Int64("payment_no", cb.PaymentNo),
		zap.Int("status", cb.Status),
	)

	callbackID, alreadyProcessed, err := h.Repo.SaveCallback(ctx, cb.InvoiceNo, cb.Status, json.RawMessage(decoded), true)
	if err != nil {
		log.Error("Failed to store callback", zap.Error(err))
		utils.WriteJSONError(w, "failed to store callback", http.StatusInternalServerError)
		return
	}
	if alreadyProcessed {
		log.Info("Duplicate callback ignored", zap.Int64("callback_id", callbackID))
		utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "duplicate": true})
		return
	}

	status := cb.LocalStatus()
	var paymentNo *int64
	if cb.PaymentNo != 0 {
		paymentNo = &cb.PaymentNo
	}

	if err := h.Repo.UpdatePaymentStatus(ctx, cb.InvoiceNo, status, paymentNo); err != nil {
		log.Error("Failed to update payment", zap.Error(err))
		if markErr := h.Repo.MarkCallbackFailed(ctx, callbackID, err.Error()); markErr != nil {
			log.Error("Failed to mark callback failed", zap.Error(markErr))
		}
		if errors.Is(err, payment.ErrPaymentNotFound) {
			utils.WriteJSONError(w, "payment not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to update payment", http.StatusInternalServerError)
		return
	}

	if err := h.Repo.MarkCallbackProcessed(ctx, callbackID); err != nil {
		log.Error("Failed to mark callback processed", zap.Error(err))
	}

	log.Info("Callback processed", zap.String("payment_status", status))
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"invoice_no": cb.InvoiceNo,
		"status":     status,
	})
}
