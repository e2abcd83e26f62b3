package repository

import (
	"context"

	"issuehub/internal/httpapi/models"

	"gorm.io/gorm"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, id int64) (*models.Meeting, error)
	GetPage(ctx context.Context, page, size int) ([]models.Meeting, int64, error)
	Update(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, id int64) error
	SetAttendees(ctx context.Context, meeting *models.Meeting, attendees []models.User) error
}

type meetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *meetingRepository) GetByID(ctx context.Context, id int64) (*models.Meeting, error) {
	var meeting models.Meeting
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Attendees").
		First(&meeting, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) GetPage(ctx context.Context, page, size int) ([]models.Meeting, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Meeting{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var meetings []models.Meeting
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Order("starts_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&meetings).Error
	return meetings, total, err
}

func (r *meetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

func (r *meetingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Meeting{}, "id = ?", id).Error
}

func (r *meetingRepository) SetAttendees(ctx context.Context, meeting *models.Meeting, attendees []models.User) error {
	return r.db.WithContext(ctx).Model(meeting).Association("Attendees").Replace(attendees)
}
