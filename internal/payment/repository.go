package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, requestCode, status string, paymentNo *int64) error
	GetPaymentByRequestCode(ctx context.Context, requestCode string) (*Payment, error)
	SaveCallback(
		ctx context.Context,
		invoiceNo string,
		status int,
		payload json.RawMessage,
		checksumValid bool,
	) (callbackID int64, alreadyProcessed bool, err error)

	MarkCallbackProcessed(ctx context.Context, callbackID int64) error
	MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	const q = `
	INSERT INTO payments (
		request_code,
		amount,
		description,
		redirect_url,
		status,
		provider
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at;
	`

	return r.db.QueryRowContext(ctx, q,
		p.RequestCode, p.Amount, p.Description, p.RedirectURL, p.Status, Provider,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, requestCode, status string, paymentNo *int64) error {
	const q = `
	UPDATE payments
	SET status = $1, payment_no = COALESCE($2, payment_no), updated_at = now()
	WHERE request_code = $3;
	`

	res, err := r.db.ExecContext(ctx, q, status, paymentNo, requestCode)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) GetPaymentByRequestCode(ctx context.Context, requestCode string) (*Payment, error) {
	const q = `
	SELECT id, request_code, amount, description, redirect_url, status, payment_no, created_at, updated_at
	FROM payments WHERE request_code = $1;
	`

	var (
		p         Payment
		paymentNo sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, requestCode).Scan(
		&p.ID, &p.RequestCode, &p.Amount, &p.Description, &p.RedirectURL,
		&p.Status, &paymentNo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if paymentNo.Valid {
		p.PaymentNo = &paymentNo.Int64
	}
	return &p, nil
}

// SaveCallback stores a callback once per (invoice_no, status). A repeat
// delivery returns the existing row and reports whether it was already
// applied to the payment; an unprocessed row must be applied again.
func (r *repository) SaveCallback(
	ctx context.Context,
	invoiceNo string,
	status int,
	payload json.RawMessage,
	checksumValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_callbacks (
		provider,
		invoice_no,
		status,
		checksum_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (invoice_no, status)
	DO UPDATE SET received_at = now()
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := r.db.QueryRowContext(ctx, q,
		Provider,
		invoiceNo,
		status,
		checksumValid,
		payload,
	).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}

	return id, processed, nil
}

func (r *repository) MarkCallbackProcessed(ctx context.Context, callbackID int64) error {
	const q = `
	UPDATE payment_callbacks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID)
	return err
}

func (r *repository) MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error {
	const q = `
	UPDATE payment_callbacks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID, reason)
	return err
}
