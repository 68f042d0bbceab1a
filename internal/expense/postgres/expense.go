package postgres

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	expenseDatamodel "github.com/peoplekit/hrcore/internal/core/datamodel/expense"
	"github.com/peoplekit/hrcore/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements the expense.Repository interface using GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *expense.Expense) error {
	record := expense.ToDataModel(exp)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	exp.ID = record.ID
	return nil
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var record expenseDatamodel.Expense
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&record), nil
}

func (r *ExpenseRepository) GetByOwner(ownerProfileID int64, limit, offset int) ([]*expense.Expense, error) {
	var records []*expenseDatamodel.Expense
	err := r.db.Where("owner_profile_id = ?", ownerProfileID).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return expense.FromDataModelSlice(records), err
}

func (r *ExpenseRepository) GetByOrg(orgID int64, limit, offset int) ([]*expense.Expense, error) {
	var records []*expenseDatamodel.Expense
	err := r.db.Where("org_id = ?", orgID).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return expense.FromDataModelSlice(records), err
}

// TransitionStatus applies a guarded status update. The from-status in the
// WHERE clause is the commit-time precondition: zero rows affected means a
// concurrent writer already moved the record.
func (r *ExpenseRepository) TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error) {
	result := r.db.Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":         to,
			"reviewed_by":    reviewerID,
			"reviewed_at":    at,
			"reviewer_notes": notes,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *ExpenseRepository) Delete(id int64) error {
	return r.db.Delete(&expenseDatamodel.Expense{}, id).Error
}
