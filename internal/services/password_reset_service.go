package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ascend/internal/models"
	"ascend/internal/repositories"
	"ascend/internal/utils"
)

// resetCodeTTL — lifetime of a reset code from issuance.
const resetCodeTTL = 15 * time.Minute

// ErrDeliveryFailure — the reset email could not be delivered after retries.
// Distinct from lookup misses: callers must not map it to "user not found".
var ErrDeliveryFailure = errors.New("failed to deliver reset code")

type PasswordResetService interface {
	// RequestReset issues a reset code for the given email. Unknown emails
	// and already-active codes both return nil so the caller's response
	// never reveals whether an account exists.
	RequestReset(email string) error
	// VerifyCode reports whether the code is currently valid. Every lookup
	// hit costs one attempt, whatever the outcome.
	VerifyCode(code string) (bool, error)
	// ResetPassword applies newPassword if the code is valid, consuming the
	// code and invalidating all other outstanding codes for the user.
	ResetPassword(code, newPassword string) (bool, error)
	// Cleanup deletes used and expired codes; returns the number removed.
	Cleanup(now time.Time) (int64, error)
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
	now      func() time.Time
}

func NewPasswordResetService(userRepo repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		repo:     repo,
		emails:   emails,
		auth:     auth,
		now:      time.Now,
	}
}

func (s *passwordResetService) RequestReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		// don't leak existence
		log.Printf("[password-reset][request] no account for %q", email)
		return nil
	}

	code, err := utils.NewResetCode()
	if err != nil {
		return err
	}

	now := s.now()
	pr, err := s.repo.CreateIfNoneActive(user.ID, code, now, now.Add(resetCodeTTL))
	if err != nil {
		return err
	}
	if pr == nil {
		log.Printf("[password-reset][request] user %s already has an active code", user.ID)
		return nil
	}

	// The row is committed before the send so the SMTP round-trip never
	// holds the transaction open; a failed send compensates by deleting it.
	if err := s.emails.SendPasswordResetEmail(user.Email, code, user.FirstName); err != nil {
		log.Printf("[password-reset][request] send to %s failed: %v", user.Email, err)
		if delErr := s.repo.Delete(pr.ID); delErr != nil {
			log.Printf("[password-reset][request] compensating delete failed: %v", delErr)
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	log.Printf("[password-reset][request] code issued for user %s", user.ID)
	return nil
}

func (s *passwordResetService) VerifyCode(code string) (bool, error) {
	code = strings.TrimSpace(code)
	pr, err := s.repo.GetByCodeUnused(code)
	if err != nil {
		return false, err
	}
	if pr == nil {
		// a miss costs nothing
		log.Printf("[password-reset][verify] unknown code")
		return false, nil
	}

	// Every hit is charged before the verdict is computed. The increment
	// returns the new counter in the same statement, so the verdict and
	// the charge stay consistent even when verifiers race: once the
	// counter reaches the limit the code never verifies again.
	overLimit := pr.Attempts >= models.MaxResetAttempts
	attempts, err := s.repo.IncrementAttempts(pr.ID)
	if err != nil {
		return false, err
	}

	if pr.IsExpired(s.now()) {
		log.Printf("[password-reset][verify] expired code for user %s", pr.UserID)
		return false, nil
	}
	if overLimit || attempts >= models.MaxResetAttempts {
		log.Printf("[password-reset][verify] attempt limit reached for user %s", pr.UserID)
		return false, nil
	}

	log.Printf("[password-reset][verify] code OK for user %s", pr.UserID)
	return true, nil
}

func (s *passwordResetService) ResetPassword(code, newPassword string) (bool, error) {
	code = strings.TrimSpace(code)
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return false, fmt.Errorf("password is required")
	}

	pr, err := s.repo.GetByCodeUnused(code)
	if err != nil {
		return false, err
	}
	if pr == nil {
		log.Printf("[password-reset][reset] unknown code")
		return false, nil
	}
	// Unlike VerifyCode this path never charges an attempt; the check order
	// otherwise matches.
	if pr.IsExpired(s.now()) {
		log.Printf("[password-reset][reset] expired code for user %s", pr.UserID)
		return false, nil
	}
	if pr.Attempts >= models.MaxResetAttempts {
		log.Printf("[password-reset][reset] attempt limit reached for user %s", pr.UserID)
		return false, nil
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	if err := s.repo.ConsumeForPasswordChange(pr.UserID, hash); err != nil {
		return false, err
	}

	log.Printf("[password-reset][reset] password reset for user %s", pr.UserID)
	return true, nil
}

func (s *passwordResetService) Cleanup(now time.Time) (int64, error) {
	return s.repo.DeleteExpiredAndUsed(now)
}
