package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chimbuka/mabuku/core/approval"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/store/postgres/model"
	"github.com/chimbuka/mabuku/utils"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db}
}

func (r *ApprovalRepository) CreateRequest(ctx context.Context, request *domain.ApprovalRequest) error {
	m := new(model.ApprovalRequest)
	if err := m.FromDomain(request); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		newRequest, err := m.ToDomain()
		if err != nil {
			return err
		}
		*request = *newRequest

		return nil
	})
}

func (r *ApprovalRepository) GetRequestByID(ctx context.Context, orgID, id string) (*domain.ApprovalRequest, error) {
	m := new(model.ApprovalRequest)
	if err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approval.ErrRequestNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *ApprovalRepository) GetRequestByExpenseID(ctx context.Context, orgID, expenseID string) (*domain.ApprovalRequest, error) {
	m := new(model.ApprovalRequest)
	if err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where(`"organization_id" = ?`, orgID).
		Where(`"expense_id" = ?`, expenseID).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approval.ErrRequestNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *ApprovalRepository) FindRequests(ctx context.Context, filter *domain.ListApprovalRequestsFilter) ([]*domain.ApprovalRequest, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).
		Preload("Tasks").
		Where(`"organization_id" = ?`, filter.OrganizationID)
	if filter.RequesterID != "" {
		db = db.Where(`"requester_id" = ?`, filter.RequesterID)
	}
	if filter.ExpenseID != "" {
		db = db.Where(`"expense_id" = ?`, filter.ExpenseID)
	}
	if filter.Statuses != nil {
		db = db.Where(`"status" IN ?`, filter.Statuses)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order("created_at DESC")

	var models []*model.ApprovalRequest
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.ApprovalRequest, 0, len(models))
	for _, m := range models {
		request, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, request)
	}

	return records, nil
}

func (r *ApprovalRepository) UpdateRequest(ctx context.Context, request *domain.ApprovalRequest) error {
	m := new(model.ApprovalRequest)
	if err := m.FromDomain(request); err != nil {
		return err
	}

	// Tasks are updated through UpdateTask; only the request row changes
	// here.
	m.Tasks = nil
	result := r.db.WithContext(ctx).
		Model(m).
		Where(`"organization_id" = ?`, request.OrganizationID).
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return approval.ErrRequestNotFound
	}

	return nil
}

func (r *ApprovalRepository) GetTaskByID(ctx context.Context, orgID, id string) (*domain.ApprovalTask, error) {
	m := new(model.ApprovalTask)
	if err := r.db.WithContext(ctx).
		Joins(`JOIN "approval_requests" ON "approval_requests"."id" = "approval_tasks"."request_id"`).
		Where(`"approval_requests"."organization_id" = ?`, orgID).
		Where(`"approval_tasks"."id" = ?`, id).
		First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approval.ErrTaskNotFound
		}
		return nil, err
	}

	return m.ToDomain()
}

func (r *ApprovalRepository) FindTasks(ctx context.Context, filter *domain.ListApprovalTasksFilter) ([]*domain.ApprovalTask, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx).
		Joins(`JOIN "approval_requests" ON "approval_requests"."id" = "approval_tasks"."request_id"`).
		Where(`"approval_requests"."organization_id" = ?`, filter.OrganizationID)
	if filter.ApproverID != "" {
		db = db.Where(`"approval_tasks"."approver_id" = ?`, filter.ApproverID)
	}
	if filter.Statuses != nil {
		db = db.Where(`"approval_tasks"."status" IN ?`, filter.Statuses)
	}
	db = applySizeOffset(db, filter.Size, filter.Offset)
	db = db.Order(`"approval_tasks"."created_at" DESC`)

	var models []*model.ApprovalTask
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.ApprovalTask, 0, len(models))
	for _, m := range models {
		task, err := m.ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, task)
	}

	return records, nil
}

func (r *ApprovalRepository) UpdateTask(ctx context.Context, task *domain.ApprovalTask) error {
	m := new(model.ApprovalTask)
	if err := m.FromDomain(task); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(m).
		Select("status", "decision", "comment", "decided_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return approval.ErrTaskNotFound
	}

	return nil
}

func (r *ApprovalRepository) AppendHistory(ctx context.Context, history *domain.ApprovalHistory) error {
	m := new(model.ApprovalHistory)
	if err := m.FromDomain(history); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*history = *m.ToDomain()

	return nil
}

func (r *ApprovalRepository) ListHistory(ctx context.Context, requestID string) ([]*domain.ApprovalHistory, error) {
	var models []*model.ApprovalHistory
	if err := r.db.WithContext(ctx).
		Where(`"request_id" = ?`, requestID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.ApprovalHistory, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}

func (r *ApprovalRepository) GetStats(ctx context.Context, orgID string) (*domain.ApprovalStats, error) {
	stats := new(domain.ApprovalStats)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := r.db.WithContext(ctx).
		Model(&model.ApprovalRequest{}).
		Select(`"status", COUNT(*) AS "count"`).
		Where(`"organization_id" = ?`, orgID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	for _, c := range counts {
		stats.TotalRequests += c.Count
		switch c.Status {
		case domain.ApprovalRequestStatusPending:
			stats.PendingRequests = c.Count
		case domain.ApprovalRequestStatusApproved:
			stats.ApprovedRequests = c.Count
		case domain.ApprovalRequestStatusRejected:
			stats.RejectedRequests = c.Count
		case domain.ApprovalRequestStatusCancelled:
			stats.CancelledRequests = c.Count
		}
	}

	var avgHours *float64
	if err := r.db.WithContext(ctx).
		Model(&model.ApprovalRequest{}).
		Select(`AVG(EXTRACT(EPOCH FROM ("updated_at" - "created_at")) / 3600)`).
		Where(`"organization_id" = ?`, orgID).
		Where(`"status" IN ?`, []string{
			domain.ApprovalRequestStatusApproved,
			domain.ApprovalRequestStatusRejected,
		}).
		Scan(&avgHours).Error; err != nil {
		return nil, err
	}
	if avgHours != nil {
		stats.AvgCompletionHours = *avgHours
	}

	if err := r.db.WithContext(ctx).
		Model(&model.ApprovalTask{}).
		Joins(`JOIN "approval_requests" ON "approval_requests"."id" = "approval_tasks"."request_id"`).
		Where(`"approval_requests"."organization_id" = ?`, orgID).
		Where(`"approval_tasks"."status" = ?`, domain.ApprovalTaskStatusPending).
		Count(&stats.PendingTasks).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
