package payment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SavePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	p := &Payment{
		RequestCode: "INV-20261018-0001",
		Amount:      "150000",
		Description: "Order 1001",
		RedirectURL: "https://sand-payment.9pay.vn/portal?baseEncode=abc&signature=def",
		Status:      StatusPending,
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs(p.RequestCode, p.Amount, p.Description, p.RedirectURL, p.Status, Provider).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

		err := repo.SavePayment(context.Background(), p)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, now, p.CreatedAt)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnError(errors.New("database error"))

		err := repo.SavePayment(context.Background(), p)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdatePaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	code := "INV-1"
	paymentNo := int64(9876)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payments SET status = \$1`).
			WithArgs(StatusPaid, sqlmock.AnyArg(), code).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePaymentStatus(context.Background(), code, StatusPaid, &paymentNo)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payments SET status = \$1`).
			WithArgs(StatusFailed, sqlmock.AnyArg(), code).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentStatus(context.Background(), code, StatusFailed, nil)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payments SET status = \$1`).
			WillReturnError(errors.New("db error"))

		err := repo.UpdatePaymentStatus(context.Background(), code, StatusPaid, nil)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPaymentByRequestCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	code := "INV-1"
	columns := []string{
		"id", "request_code", "amount", "description", "redirect_url",
		"status", "payment_no", "created_at", "updated_at",
	}

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).AddRow(
			1, code, "150000", "Order 1001", "https://sand-payment.9pay.vn/portal",
			StatusPaid, int64(555), time.Now(), time.Now(),
		)
		mock.ExpectQuery(`SELECT .* FROM payments WHERE request_code = \$1`).
			WithArgs(code).
			WillReturnRows(rows)

		p, err := repo.GetPaymentByRequestCode(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, code, p.RequestCode)
		assert.Equal(t, StatusPaid, p.Status)
		require.NotNil(t, p.PaymentNo)
		assert.Equal(t, int64(555), *p.PaymentNo)
	})

	t.Run("NullPaymentNo", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).AddRow(
			2, code, "150000", "Order 1001", "https://sand-payment.9pay.vn/portal",
			StatusPending, nil, time.Now(), time.Now(),
		)
		mock.ExpectQuery(`SELECT .* FROM payments`).
			WithArgs(code).
			WillReturnRows(rows)

		p, err := repo.GetPaymentByRequestCode(context.Background(), code)
		require.NoError(t, err)
		assert.Nil(t, p.PaymentNo)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM payments`).
			WithArgs(code).
			WillReturnError(sql.ErrNoRows)

		p, err := repo.GetPaymentByRequestCode(context.Background(), code)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM payments`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetPaymentByRequestCode(context.Background(), code)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestRepository_SaveCallback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	invoiceNo := "INV-1"
	status := ResultSuccess
	payload := []byte(`{"invoice_no":"INV-1","status":5}`)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_callbacks`).
			WithArgs(Provider, invoiceNo, status, true, payload).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(10, false))

		id, processed, err := repo.SaveCallback(ctx, invoiceNo, status, payload, true)
		assert.NoError(t, err)
		assert.False(t, processed)
		assert.Equal(t, int64(10), id)
	})

	t.Run("Redelivery_Unprocessed", func(t *testing.T) {
		// conflict keeps the original row, which has not been applied yet
		mock.ExpectQuery(`ON CONFLICT \(invoice_no, status\)\s+DO UPDATE SET received_at = now\(\)\s+RETURNING id, processed_at IS NOT NULL`).
			WithArgs(Provider, invoiceNo, status, true, payload).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(10, false))

		id, processed, err := repo.SaveCallback(ctx, invoiceNo, status, payload, true)
		assert.NoError(t, err)
		assert.False(t, processed)
		assert.Equal(t, int64(10), id)
	})

	t.Run("Redelivery_Processed", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_callbacks`).
			WithArgs(Provider, invoiceNo, status, true, payload).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(10, true))

		id, processed, err := repo.SaveCallback(ctx, invoiceNo, status, payload, true)
		assert.NoError(t, err)
		assert.True(t, processed)
		assert.Equal(t, int64(10), id)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_callbacks`).
			WillReturnError(errors.New("db error"))

		_, _, err := repo.SaveCallback(ctx, invoiceNo, status, payload, true)
		assert.Error(t, err)
	})
}

func TestRepository_CallbackUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	id := int64(1)

	t.Run("MarkProcessed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_callbacks SET processed_at = now\(\), process_error = NULL WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkCallbackProcessed(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("MarkProcessed_Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_callbacks SET processed_at = now\(\), process_error = NULL WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(errors.New("db error"))

		err := repo.MarkCallbackProcessed(ctx, id)
		assert.Error(t, err)
	})

	t.Run("MarkFailed", func(t *testing.T) {
		reason := "payment not found"
		mock.ExpectExec(`UPDATE payment_callbacks SET process_error = \$2 WHERE id = \$1`).
			WithArgs(id, reason).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkCallbackFailed(ctx, id, reason)
		assert.NoError(t, err)
	})

	t.Run("MarkFailed_Error", func(t *testing.T) {
		reason := "payment not found"
		mock.ExpectExec(`UPDATE payment_callbacks SET process_error = \$2 WHERE id = \$1`).
			WithArgs(id, reason).
			WillReturnError(errors.New("db error"))

		err := repo.MarkCallbackFailed(ctx, id, reason)
		assert.Error(t, err)
	})
}

func TestCallback_LocalStatus(t *testing.T) {
	tests := map[int]string{
		ResultSuccess:   StatusPaid,
		ResultFailed:    StatusFailed,
		ResultCancelled: StatusCancelled,
		1:               StatusPending,
		0:               StatusPending,
	}
	for code, want := range tests {
		assert.Equal(t, want, Callback{Status: code}.LocalStatus(), "code %d", code)
	}
}
