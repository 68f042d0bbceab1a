package postgres

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/memo"
	"gorm.io/gorm"
)

type MemoRepository struct {
	db *gorm.DB
}

func NewMemoRepository(db *gorm.DB) memo.Repository {
	return &MemoRepository{db: db}
}

func (r *MemoRepository) Create(m *memo.Memo) error {
	return r.db.Create(m).Error
}

func (r *MemoRepository) GetByID(id int64) (*memo.Memo, error) {
	var m memo.Memo
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemoRepository) GetByOwner(ownerProfileID int64, limit, offset int) ([]*memo.Memo, error) {
	var memos []*memo.Memo
	err := r.db.Where("owner_profile_id = ?", ownerProfileID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&memos).Error
	return memos, err
}

func (r *MemoRepository) GetByOrg(orgID int64, limit, offset int) ([]*memo.Memo, error) {
	var memos []*memo.Memo
	err := r.db.Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&memos).Error
	return memos, err
}

func (r *MemoRepository) Update(m *memo.Memo) error {
	m.UpdatedAt = time.Now()
	return r.db.Save(m).Error
}

func (r *MemoRepository) TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error) {
	result := r.db.Model(&memo.Memo{}).
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

func (r *MemoRepository) Delete(id int64) error {
	return r.db.Delete(&memo.Memo{}, id).Error
}
