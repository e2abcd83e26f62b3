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

var (
	ErrIssueNotFound      = errors.New("issue not found")
	ErrInvalidIssueStatus = errors.New("invalid issue status")
)

var issueStatuses = map[string]bool{
	"open":        true,
	"in_progress": true,
	"resolved":    true,
	"closed":      true,
}

type IssueService interface {
	Create(ctx context.Context, reporterID string, req dto.CreateIssueRequest) (*models.Issue, error)
	Get(ctx context.Context, id int64) (*models.Issue, error)
	List(ctx context.Context, page, size int, status string) (*dto.PaginatedIssueResponse, error)
	Update(ctx context.Context, id int64, actorID string, req dto.UpdateIssueRequest) (*models.Issue, error)
	Delete(ctx context.Context, id int64) error
}

type issueService struct {
	repo            repository.IssueRepository
	userRepo        repository.UserRepository
	notificationSvc NotificationService
	logger          *slog.Logger
}

func NewIssueService(
	repo repository.IssueRepository,
	userRepo repository.UserRepository,
	notificationSvc NotificationService,
	logger *slog.Logger,
) IssueService {
	return &issueService{repo: repo, userRepo: userRepo, notificationSvc: notificationSvc, logger: logger}
}

func (s *issueService) Create(ctx context.Context, reporterID string, req dto.CreateIssueRequest) (*models.Issue, error) {
	issue := &models.Issue{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ReporterID:  reporterID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, err
	}

	if issue.AssigneeID != nil && *issue.AssigneeID != reporterID {
		s.notifyAssignment(ctx, issue, reporterID)
	}
	return issue, nil
}

func (s *issueService) Get(ctx context.Context, id int64) (*models.Issue, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIssueNotFound
	}
	return issue, err
}

func (s *issueService) List(ctx context.Context, page, size int, status string) (*dto.PaginatedIssueResponse, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	issues, total, err := s.repo.GetPage(ctx, page, size, status)
	if err != nil {
		return nil, err
	}
	result := dto.NewPaginatedIssueResponse(issues, page, size, total)
	return &result, nil
}

func (s *issueService) Update(ctx context.Context, id int64, actorID string, req dto.UpdateIssueRequest) (*models.Issue, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}

	previousAssignee := issue.AssigneeID

	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = req.Description
	}
	if req.Status != nil {
		if !issueStatuses[*req.Status] {
			return nil, ErrInvalidIssueStatus
		}
		issue.Status = *req.Status
	}
	if req.Priority != nil {
		issue.Priority = req.Priority
	}
	if req.AssigneeID != nil {
		issue.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		issue.DueDate = req.DueDate
	}

	if err := s.repo.Update(ctx, issue); err != nil {
		return nil, err
	}

	newlyAssigned := issue.AssigneeID != nil &&
		(previousAssignee == nil || *previousAssignee != *issue.AssigneeID) &&
		*issue.AssigneeID != actorID
	if newlyAssigned {
		s.notifyAssignment(ctx, issue, actorID)
	}
	return issue, nil
}

func (s *issueService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrIssueNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *issueService) notifyAssignment(ctx context.Context, issue *models.Issue, actorID string) {
	actor, err := s.userRepo.FindByID(actorID)
	senderName := "issuehub"
	if err == nil {
		senderName = actor.Username
	}

	err = s.notificationSvc.Notify(ctx, *issue.AssigneeID, senderName,
		"Issue assigned to you",
		issue.Title,
		fmt.Sprintf("/issue/%d", issue.ID))
	if err != nil {
		s.logger.Error("failed to notify assignee", "issue_id", issue.ID, "error", err)
	}
}
