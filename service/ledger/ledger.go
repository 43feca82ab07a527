package ledger

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/praxisgames/corpsim/models"
	"github.com/praxisgames/corpsim/models/enum"
	"github.com/shopspring/decimal"
)

// Entry describes one financial side effect to record. The ledger is
// append-only: Write must be called on the same transaction that
// applies the paired balance mutation, so the two commit or roll back
// together.
type Entry struct {
	Type          enum.TransactionType
	Amount        decimal.Decimal
	FromUserID    *string
	ToUserID      *string
	CorporationID *string
	Description   string
	Reference     *string
}

type LedgerService interface {
	Write(entry Entry) (*models.Transaction, error)
	List(corporationID string, limit int) ([]models.Transaction, error)
	WithTx(tx *gorm.DB) LedgerService
}

type ledgerService struct {
	tx *gorm.DB
}

func Service() LedgerService {
	return &ledgerService{}
}

func (s *ledgerService) WithTx(tx *gorm.DB) LedgerService {
	s.tx = tx
	return s
}

func (s *ledgerService) Write(entry Entry) (*models.Transaction, error) {
	if entry.Amount.IsNegative() {
		return nil, errors.Errorf(
			"ledger amounts are magnitudes, got %v for %v",
			entry.Amount, entry.Type)
	}

	txn := &models.Transaction{
		Type:          entry.Type,
		Amount:        entry.Amount,
		FromUserID:    entry.FromUserID,
		ToUserID:      entry.ToUserID,
		CorporationID: entry.CorporationID,
		Description:   entry.Description,
		Reference:     entry.Reference,
	}

	if err := s.tx.Create(txn).Error; err != nil {
		return nil, errors.Wrap(err, "failed to write ledger entry")
	}

	return txn, nil
}

func (s *ledgerService) List(corporationID string, limit int) ([]models.Transaction, error) {
	txns := []models.Transaction{}

	q := s.tx.
		Where("corporation_id = ?", corporationID).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&txns).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(err, "failed to list ledger entries")
	}

	return txns, nil
}
