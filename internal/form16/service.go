package form16

import (
	"context"
	"log/slog"

	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/workflow"
)

type Repository interface {
	Create(rec *Record) error
	GetByID(id int64) (*Record, error)
	GetByProfile(profileID int64, limit, offset int) ([]*Record, error)
	GetByOrg(orgID int64, limit, offset int) ([]*Record, error)
	UpdateFields(id int64, fields map[string]interface{}) error
	Delete(id int64) error
}

type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

type Service struct {
	repo   Repository
	gate   *authz.Gate
	guard  *workflow.DeleteGuard
	audit  Recorder
	logger *slog.Logger
}

func NewService(repo Repository, gate *authz.Gate, guard *workflow.DeleteGuard, auditRec Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		guard:  guard,
		audit:  auditRec,
		logger: logger,
	}
}

func (rec *Record) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityForm16,
		ID:             rec.ID,
		OwnerProfileID: rec.ProfileID,
		OrgID:          rec.OrgID,
	}
}

// CreateRecord generates a Form 16 record for the given profile. A duplicate
// (org, financial year, profile) surfaces as a conflict.
func (s *Service) CreateRecord(ctx context.Context, actor *authz.Actor, dto CreateRecordDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec := &Record{
		OrgID:          actor.OrgID,
		ProfileID:      dto.ProfileID,
		FinancialYear:  dto.FinancialYear,
		FileKey:        dto.FileKey,
		GrossSalaryINR: dto.GrossSalaryINR,
		TaxDeductedINR: dto.TaxDeductedINR,
		GeneratedBy:    actor.ProfileID,
	}

	if decision := s.gate.Can(actor, authz.ActionCreate, rec.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(rec); err != nil {
		s.logger.Error("failed to create form16 record", "error", err, "profile_id", dto.ProfileID, "financial_year", dto.FinancialYear)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:          "form16_created",
		EntityType:      authz.EntityForm16,
		EntityID:        rec.ID,
		TargetProfileID: &rec.ProfileID,
		Metadata:        map[string]interface{}{"financial_year": rec.FinancialYear},
	}); err != nil {
		s.logger.Warn("audit record failed for form16 create", "record_id", rec.ID, "error", err)
	}

	s.logger.Info("form16 record created", "record_id", rec.ID, "profile_id", rec.ProfileID, "financial_year", rec.FinancialYear)
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, actor *authz.Actor, id int64) (*Record, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, rec.resource()); !decision.Allowed {
		s.logger.Warn("form16 read denied", "record_id", id, "actor_id", actor.UserID, "reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	return rec, nil
}

func (s *Service) ListRecords(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Record, error) {
	if actor.HasAny(authz.CapAdminOrHR, authz.CapFinance) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByProfile(actor.ProfileID, limit, offset)
}

// UpdateRecord corrects a generated record. Only admin or finance may update;
// the subject never edits their own statement.
func (s *Service) UpdateRecord(ctx context.Context, actor *authz.Actor, id int64, dto UpdateRecordDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionUpdate, rec.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	fields := map[string]interface{}{}
	if dto.FileKey != nil {
		fields["file_key"] = *dto.FileKey
		rec.FileKey = *dto.FileKey
	}
	if dto.GrossSalaryINR != nil {
		fields["gross_salary_inr"] = *dto.GrossSalaryINR
		rec.GrossSalaryINR = *dto.GrossSalaryINR
	}
	if dto.TaxDeductedINR != nil {
		fields["tax_deducted_inr"] = *dto.TaxDeductedINR
		rec.TaxDeductedINR = *dto.TaxDeductedINR
	}

	if err := s.repo.UpdateFields(id, fields); err != nil {
		s.logger.Error("failed to update form16 record", "record_id", id, "error", err)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:          "form16_updated",
		EntityType:      authz.EntityForm16,
		EntityID:        rec.ID,
		TargetProfileID: &rec.ProfileID,
		Metadata:        map[string]interface{}{"financial_year": rec.FinancialYear},
	}); err != nil {
		s.logger.Warn("audit record failed for form16 update", "record_id", rec.ID, "error", err)
	}

	return rec, nil
}

// DeleteRecord removes a record. Issued statements are externally consumed,
// so deletion is always blocked outside a maintenance override window.
func (s *Service) DeleteRecord(ctx context.Context, actor *authz.Actor, id int64) error {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.guard.CheckDelete(true); err != nil {
		return err
	}

	if decision := s.gate.Can(actor, authz.ActionDelete, rec.resource()); !decision.Allowed {
		return authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete form16 record", "record_id", id, "error", err)
		return err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:          "form16_deleted",
		EntityType:      authz.EntityForm16,
		EntityID:        id,
		TargetProfileID: &rec.ProfileID,
		Metadata:        map[string]interface{}{"financial_year": rec.FinancialYear},
	}); err != nil {
		s.logger.Warn("audit record failed for form16 delete", "record_id", id, "error", err)
	}

	s.logger.Info("form16 record deleted", "record_id", id, "actor_id", actor.UserID)
	return nil
}
