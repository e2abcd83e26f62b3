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
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("comment belongs to another member")
)

type CommentService interface {
	Create(ctx context.Context, issueID int64, authorID string, req dto.CreateCommentRequest) (*models.Comment, error)
	ListByIssue(ctx context.Context, issueID int64) ([]models.Comment, error)
	Update(ctx context.Context, id int64, authorID string, req dto.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, id int64, authorID string) error
}

type commentService struct {
	repo            repository.CommentRepository
	issueRepo       repository.IssueRepository
	userRepo        repository.UserRepository
	notificationSvc NotificationService
	logger          *slog.Logger
}

func NewCommentService(
	repo repository.CommentRepository,
	issueRepo repository.IssueRepository,
	userRepo repository.UserRepository,
	notificationSvc NotificationService,
	logger *slog.Logger,
) CommentService {
	return &commentService{
		repo:            repo,
		issueRepo:       issueRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

func (s *commentService) Create(ctx context.Context, issueID int64, authorID string, req dto.CreateCommentRequest) (*models.Comment, error) {
	issue, err := s.issueRepo.GetByID(ctx, issueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		IssueID:  issueID,
		AuthorID: authorID,
		Body:     req.Body,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Commenting on someone else's issue notifies the reporter.
	if issue.ReporterID != authorID {
		senderName := "issuehub"
		if author, err := s.userRepo.FindByID(authorID); err == nil {
			senderName = author.Username
		}
		err := s.notificationSvc.Notify(ctx, issue.ReporterID, senderName,
			"New comment on your issue",
			issue.Title,
			fmt.Sprintf("/issue/%d", issue.ID))
		if err != nil {
			s.logger.Error("failed to notify reporter", "issue_id", issue.ID, "error", err)
		}
	}
	return comment, nil
}

func (s *commentService) ListByIssue(ctx context.Context, issueID int64) ([]models.Comment, error) {
	if _, err := s.issueRepo.GetByID(ctx, issueID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIssueNotFound
	}
	return s.repo.GetByIssue(ctx, issueID)
}

func (s *commentService) Update(ctx context.Context, id int64, authorID string, req dto.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, ErrNotCommentOwner
	}

	comment.Body = req.Body
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, id int64, authorID string) error {
	comment, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if comment.AuthorID != authorID {
		return ErrNotCommentOwner
	}
	return s.repo.Delete(ctx, id)
}
