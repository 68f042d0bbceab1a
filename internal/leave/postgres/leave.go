package postgres

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(req *leave.Request) error {
	return r.db.Create(req).Error
}

func (r *LeaveRepository) GetByID(id int64) (*leave.Request, error) {
	var req leave.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) GetByOwner(ownerProfileID int64, limit, offset int) ([]*leave.Request, error) {
	var requests []*leave.Request
	err := r.db.Where("owner_profile_id = ?", ownerProfileID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *LeaveRepository) GetByOrg(orgID int64, limit, offset int) ([]*leave.Request, error) {
	var requests []*leave.Request
	err := r.db.Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *LeaveRepository) TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error) {
	result := r.db.Model(&leave.Request{}).
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
