package repository

import (
	"context"

	"issuehub/internal/httpapi/models"

	"gorm.io/gorm"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id int64) (*models.Issue, error)
	GetPage(ctx context.Context, page, size int, status string) ([]models.Issue, int64, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id int64) error
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *issueRepository) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Assignee").
		First(&issue, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) GetPage(ctx context.Context, page, size int, status string) ([]models.Issue, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Issue{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []models.Issue
	err := query.
		Preload("Reporter").
		Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&issues).Error
	return issues, total, err
}

func (r *issueRepository) Update(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Save(issue).Error
}

func (r *issueRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Issue{}, "id = ?", id).Error
}
