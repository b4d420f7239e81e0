package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxResetAttempts — verification attempts allowed per reset code.
const MaxResetAttempts = 3

// PasswordResetCode — one outstanding reset attempt. A code is valid iff it
// is unused, unexpired and under the attempt limit; expiry and lockout are
// derived at read time, only `used` is stored as a discrete flag.
type PasswordResetCode struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Code      string    `json:"-"` // 6 ASCII digits, zero-padded
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *PasswordResetCode) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
