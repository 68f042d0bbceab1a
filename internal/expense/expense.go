package expense

import (
	"time"

	expenseDatamodel "github.com/peoplekit/hrcore/internal/core/datamodel/expense"
	"github.com/peoplekit/hrcore/internal/workflow"
)

type Expense struct {
	ID             int64      `json:"id"`
	OrgID          int64      `json:"org_id"`
	OwnerProfileID int64      `json:"owner_profile_id"`
	AmountINR      int64      `json:"amount_inr"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	ReceiptKey     *string    `json:"receipt_key,omitempty"`
	Status         string     `json:"status"`
	ExpenseDate    time.Time  `json:"expense_date"`
	ReviewedBy     *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewerNotes  *string    `json:"reviewer_notes,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsPosted reports whether the expense has hit the ledger. Posted expenses
// are structurally immutable; corrections go through compensating journals.
func (e *Expense) IsPosted() bool {
	return e.Status == workflow.StatusPaid
}

func NewExpense(orgID, ownerProfileID int64, dto CreateExpenseDTO) *Expense {
	now := time.Now()
	return &Expense{
		OrgID:          orgID,
		OwnerProfileID: ownerProfileID,
		AmountINR:      dto.AmountINR,
		Description:    dto.Description,
		Category:       dto.Category,
		ReceiptKey:     dto.ReceiptKey,
		Status:         workflow.StatusSubmitted,
		ExpenseDate:    dto.ExpenseDate,
		SubmittedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:             e.ID,
		OrgID:          e.OrgID,
		OwnerProfileID: e.OwnerProfileID,
		AmountINR:      e.AmountINR,
		Description:    e.Description,
		Category:       e.Category,
		ReceiptKey:     e.ReceiptKey,
		Status:         e.Status,
		ExpenseDate:    e.ExpenseDate,
		ReviewedBy:     e.ReviewedBy,
		ReviewedAt:     e.ReviewedAt,
		ReviewerNotes:  e.ReviewerNotes,
		SubmittedAt:    e.SubmittedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:             e.ID,
		OrgID:          e.OrgID,
		OwnerProfileID: e.OwnerProfileID,
		AmountINR:      e.AmountINR,
		Description:    e.Description,
		Category:       e.Category,
		ReceiptKey:     e.ReceiptKey,
		Status:         e.Status,
		ExpenseDate:    e.ExpenseDate,
		ReviewedBy:     e.ReviewedBy,
		ReviewedAt:     e.ReviewedAt,
		ReviewerNotes:  e.ReviewerNotes,
		SubmittedAt:    e.SubmittedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
