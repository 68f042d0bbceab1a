package form16

import (
	"regexp"
	"time"

	"github.com/peoplekit/hrcore/internal"
)

var financialYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Record is a generated Form 16 tax statement for one profile and financial
// year. It carries no review workflow; finance generates it, the subject
// reads it.
type Record struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrgID          int64     `json:"org_id" gorm:"column:org_id;not null;uniqueIndex:idx_form16_org_year_profile"`
	ProfileID      int64     `json:"profile_id" gorm:"column:profile_id;not null;uniqueIndex:idx_form16_org_year_profile"`
	FinancialYear  string    `json:"financial_year" gorm:"column:financial_year;not null;uniqueIndex:idx_form16_org_year_profile"`
	FileKey        string    `json:"file_key" gorm:"column:file_key;not null"`
	GrossSalaryINR int64     `json:"gross_salary_inr" gorm:"column:gross_salary_inr;not null"`
	TaxDeductedINR int64     `json:"tax_deducted_inr" gorm:"column:tax_deducted_inr;not null"`
	GeneratedBy    int64     `json:"generated_by" gorm:"column:generated_by;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "form16_records"
}

type CreateRecordDTO struct {
	ProfileID      int64  `json:"profile_id"`
	FinancialYear  string `json:"financial_year"`
	FileKey        string `json:"file_key"`
	GrossSalaryINR int64  `json:"gross_salary_inr"`
	TaxDeductedINR int64  `json:"tax_deducted_inr"`
}

func (d *CreateRecordDTO) Validate() error {
	if d.ProfileID == 0 {
		return internal.NewValidationError("profile_id is required", internal.ErrCodeValidationFailed)
	}
	if !financialYearPattern.MatchString(d.FinancialYear) {
		return internal.NewValidationError("financial_year must look like 2025-26", internal.ErrCodeValidationFailed)
	}
	if d.FileKey == "" {
		return internal.NewValidationError("file_key is required", internal.ErrCodeValidationFailed)
	}
	if d.GrossSalaryINR <= 0 {
		return internal.NewValidationError("gross_salary_inr must be positive", internal.ErrCodeInvalidAmount)
	}
	if d.TaxDeductedINR < 0 {
		return internal.NewValidationError("tax_deducted_inr cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}

type UpdateRecordDTO struct {
	FileKey        *string `json:"file_key,omitempty"`
	GrossSalaryINR *int64  `json:"gross_salary_inr,omitempty"`
	TaxDeductedINR *int64  `json:"tax_deducted_inr,omitempty"`
}

func (d *UpdateRecordDTO) Validate() error {
	if d.FileKey == nil && d.GrossSalaryINR == nil && d.TaxDeductedINR == nil {
		return internal.NewValidationError("at least one field is required", internal.ErrCodeValidationFailed)
	}
	if d.FileKey != nil && *d.FileKey == "" {
		return internal.NewValidationError("file_key cannot be empty", internal.ErrCodeValidationFailed)
	}
	if d.GrossSalaryINR != nil && *d.GrossSalaryINR <= 0 {
		return internal.NewValidationError("gross_salary_inr must be positive", internal.ErrCodeInvalidAmount)
	}
	if d.TaxDeductedINR != nil && *d.TaxDeductedINR < 0 {
		return internal.NewValidationError("tax_deducted_inr cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}
