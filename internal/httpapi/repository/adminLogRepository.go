package repository

import (
	"context"

	"issuehub/internal/httpapi/models"

	"gorm.io/gorm"
)

type AdminLogRepository interface {
	Append(ctx context.Context, entry *models.AdminLog) error
	GetPage(ctx context.Context, page, size int) ([]models.AdminLog, int64, error)
}

type adminLogRepository struct {
	db *gorm.DB
}

func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepository{db: db}
}

func (r *adminLogRepository) Append(ctx context.Context, entry *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminLogRepository) GetPage(ctx context.Context, page, size int) ([]models.AdminLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AdminLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&entries).Error
	return entries, total, err
}
