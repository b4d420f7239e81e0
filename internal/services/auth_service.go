package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
	// ValidateEmailDomain rejects addresses outside the configured allow-list.
	ValidateEmailDomain(email string) bool
	AllowedDomains() []string
}

type authService struct {
	allowedDomains []string
}

func NewAuthService(allowedDomains []string) AuthService {
	return &authService{allowedDomains: allowedDomains}
}

func (s *authService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *authService) ValidateEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range s.allowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

func (s *authService) AllowedDomains() []string {
	return s.allowedDomains
}
