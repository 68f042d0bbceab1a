package postgres

import (
	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/directory"
	"gorm.io/gorm"
)

// DirectoryRepository implements directory.Repository using GORM.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) directory.Repository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetProfileByUserID(userID int64) (*directory.Profile, error) {
	var profile directory.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *DirectoryRepository) GetProfileByID(profileID int64) (*directory.Profile, error) {
	var profile directory.Profile
	err := r.db.Where("id = ?", profileID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *DirectoryRepository) RolesForUser(userID, orgID int64) ([]string, error) {
	var roles []string
	err := r.db.Model(&directory.RoleAssignment{}).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		Pluck("role", &roles).Error
	return roles, err
}

func (r *DirectoryRepository) UpdateProfileFields(profileID int64, fields map[string]interface{}) error {
	return r.db.Model(&directory.Profile{}).
		Where("id = ?", profileID).
		Updates(fields).Error
}
