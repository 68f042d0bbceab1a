package postgres

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/profilechange"
	"gorm.io/gorm"
)

type ProfileChangeRepository struct {
	db *gorm.DB
}

func NewProfileChangeRepository(db *gorm.DB) profilechange.Repository {
	return &ProfileChangeRepository{db: db}
}

func (r *ProfileChangeRepository) Create(req *profilechange.ChangeRequest) error {
	return r.db.Create(req).Error
}

func (r *ProfileChangeRepository) GetByID(id int64) (*profilechange.ChangeRequest, error) {
	var req profilechange.ChangeRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *ProfileChangeRepository) GetByOwner(ownerProfileID int64, limit, offset int) ([]*profilechange.ChangeRequest, error) {
	var requests []*profilechange.ChangeRequest
	err := r.db.Where("owner_profile_id = ?", ownerProfileID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *ProfileChangeRepository) GetByOrg(orgID int64, limit, offset int) ([]*profilechange.ChangeRequest, error) {
	var requests []*profilechange.ChangeRequest
	err := r.db.Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *ProfileChangeRepository) TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error) {
	result := r.db.Model(&profilechange.ChangeRequest{}).
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
