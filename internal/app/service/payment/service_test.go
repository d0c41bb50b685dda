package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fahamni/payments/internal/models"
)

func TestCreateCheckout_NewArtifact(t *testing.T) {
	gw := newFakeGateway()
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)

	url, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/new", url)

	require.Len(t, ledger.txns, 1)
	txn := ledger.txns[0]
	require.Equal(t, "ref_new", txn.ExternalRef)
	require.Equal(t, models.PaymentStatusPending, txn.Status)
	require.EqualValues(t, 4500, txn.AmountMinor)
	require.Equal(t, "student@example.com", txn.StudentEmail)
	require.Equal(t, "res-1", txn.Metadata["reservationId"])
}

func TestCreateCheckout_ReusesFreshPending(t *testing.T) {
	gw := newFakeGateway()
	gw.reuseURL = "https://pay.example/reused"
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	ledger.txns = append(ledger.txns, &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		Currency:      "tnd",
		CreatedAt:     svc.now().Add(-19*time.Minute - 59*time.Second),
	})

	url, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/reused", url)
	require.Len(t, ledger.txns, 1)
}

func TestCreateCheckout_StalePendingGetsNewArtifact(t *testing.T) {
	gw := newFakeGateway()
	gw.reuseURL = "https://pay.example/reused"
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	ledger.txns = append(ledger.txns, &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		Currency:      "tnd",
		CreatedAt:     svc.now().Add(-20*time.Minute - time.Second),
	})

	url, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/new", url)
	require.Len(t, ledger.txns, 2)
}

func TestCreateCheckout_CurrencyMismatchSkipsReuse(t *testing.T) {
	gw := newFakeGateway()
	gw.reuseURL = "https://pay.example/reused"
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)

	ledger.txns = append(ledger.txns, &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		Currency:      "eur",
		CreatedAt:     time.Now().Add(-time.Minute),
	})

	url, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/new", url)
}

func TestCreateCheckout_ReuseFallsBackWhenProviderDeclines(t *testing.T) {
	gw := newFakeGateway()
	gw.reuseURL = ""
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)

	ledger.txns = append(ledger.txns, &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		Currency:      "tnd",
		CreatedAt:     time.Now().Add(-time.Minute),
	})

	url, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/new", url)
}

func TestCreateCheckout_RejectsUnpayableReservation(t *testing.T) {
	svc := newTestService(newFakeGateway(), newFakeLedger(), nil)

	r := acceptedReservation("res-1")
	r.Status = models.ReservationStatusPending
	_, err := svc.CreateCheckoutForReservation(context.Background(), r)
	require.ErrorIs(t, err, ErrReservationNotPayable)

	r.Status = models.ReservationStatusPaid
	_, err = svc.CreateCheckoutForReservation(context.Background(), r)
	require.ErrorIs(t, err, ErrReservationAlreadyPaid)
}

func TestCreateCheckout_UnconfiguredProvider(t *testing.T) {
	gw := newFakeGateway()
	gw.configured = false
	svc := newTestService(gw, newFakeLedger(), nil)

	_, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestCreateCheckout_MissingParticipantEmail(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(newFakeGateway(), ledger, nil)

	r := acceptedReservation("res-1")
	r.ParticipantEmail = "   "
	_, err := svc.CreateCheckoutForReservation(context.Background(), r)
	require.ErrorIs(t, err, ErrMissingParticipantEmail)
	require.Empty(t, ledger.txns)
}

func TestCreateCheckout_ProviderErrorLeavesNoRow(t *testing.T) {
	gw := newFakeGateway()
	gw.checkoutErr = ErrProviderUnavailable
	ledger := newFakeLedger()
	svc := newTestService(gw, ledger, nil)

	_, err := svc.CreateCheckoutForReservation(context.Background(), acceptedReservation("res-1"))
	require.ErrorIs(t, err, ErrProviderUnavailable)
	require.Empty(t, ledger.txns)
}

func TestSynchronizeReference_EmptyRefIsNoop(t *testing.T) {
	svc := newTestService(newFakeGateway(), newFakeLedger(), nil)

	txn, err := svc.SynchronizeReference(context.Background(), "  ")
	require.NoError(t, err)
	require.Nil(t, txn)
}

func TestSynchronizeLatestPending(t *testing.T) {
	gw := newFakeGateway()
	gw.payloads["ref_old"] = map[string]any{"ref": "ref_old", "status": "paid"}
	ledger := newFakeLedger()
	r := acceptedReservation("res-1")
	ledger.reservations["res-1"] = r
	ledger.txns = append(ledger.txns, &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		Currency:      "tnd",
		CreatedAt:     time.Now().Add(-time.Minute),
	})
	svc := newTestService(gw, ledger, nil)

	txn, err := svc.SynchronizeLatestPendingForReservation(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, txn)
	require.Equal(t, models.PaymentStatusPaid, txn.Status)
	require.Equal(t, models.ReservationStatusPaid, r.Status)
}

func TestMarkReservationCheckoutCanceled(t *testing.T) {
	ledger := newFakeLedger()
	r := acceptedReservation("res-1")
	ledger.reservations["res-1"] = r
	pending := &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_old",
		Status:        models.PaymentStatusPending,
		CreatedAt:     time.Now().Add(-time.Minute),
	}
	ledger.txns = append(ledger.txns, pending)
	svc := newTestService(newFakeGateway(), ledger, nil)

	require.NoError(t, svc.MarkReservationCheckoutCanceled(context.Background(), r))
	require.Equal(t, models.PaymentStatusCanceled, pending.Status)
	require.NotNil(t, pending.ErrorMessage)
}

func TestMarkReservationCheckoutCanceled_PaidRowUntouched(t *testing.T) {
	ledger := newFakeLedger()
	r := acceptedReservation("res-1")
	ledger.reservations["res-1"] = r
	paid := &models.PaymentTransaction{
		ReservationID: "res-1",
		ExternalRef:   "ref_paid",
		Status:        models.PaymentStatusPaid,
		CreatedAt:     time.Now().Add(-time.Minute),
	}
	ledger.txns = append(ledger.txns, paid)
	svc := newTestService(newFakeGateway(), ledger, nil)

	require.NoError(t, svc.MarkReservationCheckoutCanceled(context.Background(), r))
	require.Equal(t, models.PaymentStatusPaid, paid.Status)
}
