package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/form16"
	"gorm.io/gorm"
)

type Form16Repository struct {
	db *gorm.DB
}

func NewForm16Repository(db *gorm.DB) form16.Repository {
	return &Form16Repository{db: db}
}

func (r *Form16Repository) Create(rec *form16.Record) error {
	if err := r.db.Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateRecord.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *Form16Repository) GetByID(id int64) (*form16.Record, error) {
	var rec form16.Record
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Form16Repository) GetByProfile(profileID int64, limit, offset int) ([]*form16.Record, error) {
	var records []*form16.Record
	err := r.db.Where("profile_id = ?", profileID).
		Order("financial_year DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *Form16Repository) GetByOrg(orgID int64, limit, offset int) ([]*form16.Record, error) {
	var records []*form16.Record
	err := r.db.Where("org_id = ?", orgID).
		Order("financial_year DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *Form16Repository) UpdateFields(id int64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.Model(&form16.Record{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Form16Repository) Delete(id int64) error {
	return r.db.Delete(&form16.Record{}, id).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite in tests reports constraint failures as plain strings
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
