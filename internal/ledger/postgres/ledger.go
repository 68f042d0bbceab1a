package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/ledger"
	"gorm.io/gorm"
)

// LedgerRepository implements ledger.Repository using GORM.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) ledger.Repository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(journal *ledger.Journal) error {
	if err := r.db.Create(journal).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateRecord.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *LedgerRepository) GetBySource(sourceType string, sourceID int64) (*ledger.Journal, error) {
	var journal ledger.Journal
	err := r.db.Preload("Lines").
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		First(&journal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &journal, nil
}

func (r *LedgerRepository) MarkReversed(journalID int64) error {
	return r.db.Model(&ledger.Journal{}).
		Where("id = ?", journalID).
		Update("status", ledger.JournalStatusReversed).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite in tests reports constraint failures as plain strings
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
