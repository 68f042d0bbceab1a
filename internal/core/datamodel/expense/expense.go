package expense

import "time"

type Expense struct {
	ID             int64      `gorm:"primaryKey"`
	OrgID          int64      `gorm:"column:org_id;not null"`
	OwnerProfileID int64      `gorm:"column:owner_profile_id;not null"`
	AmountINR      int64      `gorm:"column:amount_inr;not null"`
	Description    string     `gorm:"not null"`
	Category       string     `gorm:"column:category"`
	ReceiptKey     *string    `gorm:"column:receipt_key"`
	Status         string     `gorm:"column:status;default:submitted"`
	ExpenseDate    time.Time  `gorm:"column:expense_date;type:date"`
	ReviewedBy     *int64     `gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	ReviewerNotes  *string    `gorm:"column:reviewer_notes"`
	SubmittedAt    time.Time  `gorm:"column:submitted_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
