package service

import (
	"errors"

	"issuehub/internal/httpapi/models"
	"issuehub/internal/httpapi/repository"

	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("member not found")

type MemberService interface {
	List() ([]models.User, error)
	Get(id string) (*models.User, error)
	UpdateRole(id, role string) (*models.User, error)
	Delete(id string) error
}

type memberService struct {
	userRepo repository.UserRepository
}

func NewMemberService(userRepo repository.UserRepository) MemberService {
	return &memberService{userRepo: userRepo}
}

func (s *memberService) List() ([]models.User, error) {
	return s.userRepo.List()
}

func (s *memberService) Get(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return user, err
}

func (s *memberService) UpdateRole(id, role string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if role != "member" && role != "admin" {
		return nil, errors.New("role must be member or admin")
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *memberService) Delete(id string) error {
	if _, err := s.userRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMemberNotFound
	}
	return s.userRepo.Delete(id)
}
