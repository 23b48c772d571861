package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/utils"
)

// AuditLogRepository persists audit entries. It implements
// audit.AuditLogger so services can log without knowing the store.
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db}
}

// Log records one action. Actor and organization are taken from ctx;
// data is flattened into the JSON payload column.
func (r *AuditLogRepository) Log(ctx context.Context, action string, data interface{}) error {
	payload, err := utils.StructToMap(data)
	if err != nil {
		return err
	}

	m := new(model.AuditLog)
	if err := m.FromDomain(&domain.AuditLog{
		OrganizationID: audit.OrganizationID(ctx),
		Action:         action,
		ActorID:        audit.ActorID(ctx),
		Data:           payload,
	}); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AuditLogRepository) List(ctx context.Context, filter *domain.ListAuditLogsFilter) ([]*domain.AuditLog, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.Actions != nil {
		db = db.Where(`"action" IN ?`, filter.Actions)
	}
	if filter.ActorID != "" {
		db = db.Where(`"actor_id" = ?`, filter.ActorID)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("timestamp DESC")

	var models []*model.AuditLog
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.AuditLog, 0, len(models))
	for _, m := range models {
		l, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, l)
	}

	return records, nil
}
