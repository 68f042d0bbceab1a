package ledger

import (
	"time"
)

const (
	JournalStatusPosted   = "posted"
	JournalStatusReversed = "reversed"
)

const (
	AccountExpense        = "expense"
	AccountAccountPayable = "accounts_payable"
)

// Journal is one balanced financial event. The (source_type, source_id)
// pair is unique, which is what makes posting idempotent under retries.
type Journal struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	OrgID       int64         `json:"org_id" gorm:"column:org_id;not null"`
	SourceType  string        `json:"source_type" gorm:"column:source_type;not null;uniqueIndex:idx_journal_source"`
	SourceID    int64         `json:"source_id" gorm:"column:source_id;not null;uniqueIndex:idx_journal_source"`
	Description string        `json:"description" gorm:"column:description"`
	Status      string        `json:"status" gorm:"column:status;default:posted"`
	PostedBy    int64         `json:"posted_by" gorm:"column:posted_by"`
	PostedAt    time.Time     `json:"posted_at" gorm:"column:posted_at"`
	Lines       []JournalLine `json:"lines" gorm:"foreignKey:JournalID"`
	CreatedAt   time.Time     `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Journal) TableName() string {
	return "journals"
}

type JournalLine struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	JournalID int64  `json:"journal_id" gorm:"column:journal_id;not null;index"`
	Account   string `json:"account" gorm:"column:account;not null"`
	Debit     int64  `json:"debit" gorm:"column:debit;default:0"`
	Credit    int64  `json:"credit" gorm:"column:credit;default:0"`
}

func (JournalLine) TableName() string {
	return "journal_lines"
}

type Repository interface {
	Create(journal *Journal) error
	GetBySource(sourceType string, sourceID int64) (*Journal, error)
	MarkReversed(journalID int64) error
}
