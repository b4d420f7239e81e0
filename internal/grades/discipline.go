package grades

import (
	"fmt"
	"strings"
)

// Discipline — climbing style tag. Closed set, stored as-is in the DB.
type Discipline string

const (
	Boulder Discipline = "BOULDER"
	Lead    Discipline = "LEAD"
	TopRope Discipline = "TOP_ROPE"
)

// Disciplines in declaration order.
var Disciplines = []Discipline{Boulder, Lead, TopRope}

func ParseDiscipline(s string) (Discipline, error) {
	switch Discipline(strings.ToUpper(strings.TrimSpace(s))) {
	case Boulder:
		return Boulder, nil
	case Lead:
		return Lead, nil
	case TopRope:
		return TopRope, nil
	}
	return "", fmt.Errorf("unknown discipline: %q", s)
}

func (d Discipline) String() string { return string(d) }
