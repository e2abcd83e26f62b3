package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/models"
	"issuehub/internal/httpapi/repository"

	"gorm.io/gorm"
)

var ErrMeetingNotFound = errors.New("meeting not found")

type MeetingService interface {
	Create(ctx context.Context, organizerID string, req dto.CreateMeetingRequest) (*models.Meeting, error)
	Get(ctx context.Context, id int64) (*models.Meeting, error)
	List(ctx context.Context, page, size int) ([]models.Meeting, int64, error)
	Update(ctx context.Context, id int64, req dto.UpdateMeetingRequest) (*models.Meeting, error)
	Delete(ctx context.Context, id int64) error
}

type meetingService struct {
	repo            repository.MeetingRepository
	userRepo        repository.UserRepository
	notificationSvc NotificationService
	logger          *slog.Logger
}

func NewMeetingService(
	repo repository.MeetingRepository,
	userRepo repository.UserRepository,
	notificationSvc NotificationService,
	logger *slog.Logger,
) MeetingService {
	return &meetingService{repo: repo, userRepo: userRepo, notificationSvc: notificationSvc, logger: logger}
}

func (s *meetingService) Create(ctx context.Context, organizerID string, req dto.CreateMeetingRequest) (*models.Meeting, error) {
	meeting := &models.Meeting{
		Title:       req.Title,
		Agenda:      req.Agenda,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		OrganizerID: organizerID,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	if len(req.AttendeeIDs) > 0 {
		attendees, err := s.resolveAttendees(req.AttendeeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetAttendees(ctx, meeting, attendees); err != nil {
			return nil, err
		}
		s.notifyAttendees(ctx, meeting, organizerID, req.AttendeeIDs)
	}
	return meeting, nil
}

func (s *meetingService) Get(ctx context.Context, id int64) (*models.Meeting, error) {
	meeting, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	return meeting, err
}

func (s *meetingService) List(ctx context.Context, page, size int) ([]models.Meeting, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.repo.GetPage(ctx, page, size)
}

func (s *meetingService) Update(ctx context.Context, id int64, req dto.UpdateMeetingRequest) (*models.Meeting, error) {
	meeting, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		meeting.Title = *req.Title
	}
	if req.Agenda != nil {
		meeting.Agenda = req.Agenda
	}
	if req.Location != nil {
		meeting.Location = req.Location
	}
	if req.StartsAt != nil {
		meeting.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		meeting.EndsAt = req.EndsAt
	}

	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, err
	}

	if req.AttendeeIDs != nil {
		attendees, err := s.resolveAttendees(req.AttendeeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetAttendees(ctx, meeting, attendees); err != nil {
			return nil, err
		}
	}
	return meeting, nil
}

func (s *meetingService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMeetingNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *meetingService) resolveAttendees(ids []string) ([]models.User, error) {
	attendees := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.FindByID(id)
		if err != nil {
			return nil, fmt.Errorf("unknown attendee %s: %w", id, err)
		}
		attendees = append(attendees, *user)
	}
	return attendees, nil
}

func (s *meetingService) notifyAttendees(ctx context.Context, meeting *models.Meeting, organizerID string, attendeeIDs []string) {
	senderName := "issuehub"
	if organizer, err := s.userRepo.FindByID(organizerID); err == nil {
		senderName = organizer.Username
	}

	for _, attendeeID := range attendeeIDs {
		if attendeeID == organizerID {
			continue
		}
		err := s.notificationSvc.Notify(ctx, attendeeID, senderName,
			"Meeting invitation",
			meeting.Title,
			fmt.Sprintf("/meeting/%d", meeting.ID))
		if err != nil {
			s.logger.Error("failed to notify attendee", "meeting_id", meeting.ID, "attendee", attendeeID, "error", err)
		}
	}
}
