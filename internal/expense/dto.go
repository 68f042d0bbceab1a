package expense

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
)

type CreateExpenseDTO struct {
	AmountINR   int64     `json:"amount_inr"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ReceiptKey  *string   `json:"receipt_key,omitempty"`
	ExpenseDate time.Time `json:"expense_date"`
}

func (d *CreateExpenseDTO) Validate() error {
	if d.AmountINR <= 0 {
		return internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if d.Description == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if d.ExpenseDate.IsZero() {
		return internal.NewValidationError("expense date is required", internal.ErrCodeInvalidDate)
	}
	if d.ExpenseDate.After(time.Now().AddDate(0, 0, 1)) {
		return internal.NewValidationError("expense date cannot be in the future", internal.ErrCodeInvalidDate)
	}
	return nil
}

type TransitionDTO struct {
	Notes *string `json:"notes,omitempty"`
}
