package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"ascend/internal/models"
	"ascend/internal/repositories"
)

var ErrEmailTaken = errors.New("user with this email already exists")

type UserService interface {
	Register(req *models.RegisterRequest) (*models.User, error)
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

type userService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
}

func NewUserService(repo repositories.UserRepository, emails EmailService, auth AuthService) UserService {
	return &userService{
		repo:   repo,
		emails: emails,
		auth:   auth,
	}
}

func (s *userService) Register(req *models.RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters long")
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if lastName == "" {
		return nil, fmt.Errorf("last name is required")
	}
	if !s.auth.ValidateEmailDomain(email) {
		return nil, fmt.Errorf("email domain not allowed; allowed domains: %s",
			strings.Join(s.auth.AllowedDomains(), ", "))
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
			// warn but do not fail registration
			log.Printf("[users][register] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) GetByID(id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
}
