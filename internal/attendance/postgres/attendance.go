package postgres

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/attendance"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.Repository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(c *attendance.Correction) error {
	return r.db.Create(c).Error
}

func (r *AttendanceRepository) GetByID(id int64) (*attendance.Correction, error) {
	var c attendance.Correction
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *AttendanceRepository) GetByOwner(ownerProfileID int64, limit, offset int) ([]*attendance.Correction, error) {
	var corrections []*attendance.Correction
	err := r.db.Where("owner_profile_id = ?", ownerProfileID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&corrections).Error
	return corrections, err
}

func (r *AttendanceRepository) GetByOrg(orgID int64, limit, offset int) ([]*attendance.Correction, error) {
	var corrections []*attendance.Correction
	err := r.db.Where("org_id = ?", orgID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&corrections).Error
	return corrections, err
}

func (r *AttendanceRepository) TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error) {
	result := r.db.Model(&attendance.Correction{}).
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
