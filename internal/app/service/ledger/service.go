package ledger

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/tool"
	"github.com/fahamni/payments/pkg/types"
)

// Service is the gorm-backed transaction ledger. All status transitions go
// through Reconcile so concurrent webhook and polling deliveries serialize
// on the row lock instead of racing.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

func (s *Service) FindLatestPendingByReservation(ctx context.Context, reservationID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("reservation_id = ? AND status = ?", reservationID, models.PaymentStatusPending).
		Order("created_at DESC").
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Service) FindLatestByReservation(ctx context.Context, reservationID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Service) FindByExternalRef(ctx context.Context, externalRef string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("external_ref = ? OR secondary_ref = ?", externalRef, externalRef).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Service) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	if txn.ID == "" {
		txn.ID = tool.GenerateUUIDV7()
	}
	return s.db.WithContext(ctx).Create(txn).Error
}

// Reconcile locks the transaction row matched by externalRef (primary or
// secondary reference) plus its reservation, runs fn, and persists both.
// An unknown reference is a no-op returning (nil, nil).
func (s *Service) Reconcile(ctx context.Context, externalRef string, fn payment.ReconcileFunc) (*models.PaymentTransaction, error) {
	var result *models.PaymentTransaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.PaymentTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_ref = ? OR secondary_ref = ?", externalRef, externalRef).
			First(&txn).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debugw("reconcile ignored unknown reference", "external_ref", externalRef)
			return nil
		}
		if err != nil {
			return err
		}

		var res *models.Reservation
		if txn.ReservationID != "" {
			var loaded models.Reservation
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", txn.ReservationID).
				First(&loaded).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				s.log.Warnw("transaction references missing reservation",
					"external_ref", externalRef, "reservation_id", txn.ReservationID)
			case err != nil:
				return err
			default:
				res = &loaded
			}
		}

		if err := fn(ctx, &txn, res); err != nil {
			return err
		}

		if err := tx.Save(&txn).Error; err != nil {
			return err
		}
		if res != nil {
			if err := tx.Save(res).Error; err != nil {
				return err
			}
		}
		result = &txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindReservation loads one reservation by id, nil when absent.
func (s *Service) FindReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveReservation persists reservation fields changed outside a Reconcile
// transaction, such as admin edits to pricing.
func (s *Service) SaveReservation(ctx context.Context, res *models.Reservation) error {
	return s.db.WithContext(ctx).Save(res).Error
}

// ScanTransactions pages through the ledger with optional field filters,
// newest first.
func (s *Service) ScanTransactions(ctx context.Context, filters []*types.CommonFilter, page, pageSize int) ([]models.PaymentTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := s.db.WithContext(ctx).Model(&models.PaymentTransaction{})
	for _, f := range filters {
		if f != nil {
			query = query.Clauses(f)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.PaymentTransaction
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
