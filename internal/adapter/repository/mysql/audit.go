package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	auditDomain "caisse-core/internal/domain/audit"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entity, entityRef string, limit, offset int) ([]auditDomain.Entry, error) {
	var out []auditDomain.Entry
	res := r.db.WithContext(ctx).
		Where("entity = ? AND entity_ref = ?", entity, entityRef).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}

func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&auditDomain.Entry{})
	return res.RowsAffected, res.Error
}
