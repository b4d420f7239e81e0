package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ascend/internal/grades"
)

// Date — calendar day without a time component. Serialized as "2006-01-02"
// in JSON and mapped to a DATE column.
type Date time.Time

const dateLayout = "2006-01-02"

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("date is required")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	*d = Date(t)
	return nil
}

func (d Date) Value() (driver.Value, error) { return time.Time(d), nil }

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date(v)
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return err
		}
		*d = Date(t)
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Session — one logged climb.
type Session struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"-"`
	Discipline grades.Discipline `json:"discipline"`
	Grade      string            `json:"grade"` // catalog display value, e.g. "V4" or "5.10a"
	Date       Date              `json:"date"`
	Notes      string            `json:"notes,omitempty"`
	Sent       bool              `json:"sent"`
}

type CreateSessionRequest struct {
	Discipline string `json:"discipline" binding:"required"`
	Grade      string `json:"grade" binding:"required"`
	Date       *Date  `json:"date" binding:"required"`
	Notes      string `json:"notes"`
	Sent       *bool  `json:"sent" binding:"required"`
}

// UpdateSessionRequest — partial update: nil fields are left unchanged.
type UpdateSessionRequest struct {
	Discipline *string `json:"discipline"`
	Grade      *string `json:"grade"`
	Date       *Date   `json:"date"`
	Notes      *string `json:"notes"`
	Sent       *bool   `json:"sent"`
}
