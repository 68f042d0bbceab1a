package postgres

import (
	"github.com/peoplekit/hrcore/internal/audit"
	"gorm.io/gorm"
)

// AuditRepository implements audit.Repository using GORM. It exposes no
// update or delete path; entries are write-once.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(entry *audit.Entry) error {
	return r.db.Create(entry).Error
}

func (r *AuditRepository) List(orgID int64, filter audit.Filter) ([]*audit.Entry, error) {
	query := r.db.Where("org_id = ?", orgID)

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}

	var entries []*audit.Entry
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error
	return entries, err
}
