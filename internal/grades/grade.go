package grades

import (
	"fmt"
	"strings"
)

// Grade — one entry of the fixed grade catalog. Numeric values are exact
// decimal literals; they order grades within one scale but carry no shared
// meaning across V-scale and YDS.
type Grade struct {
	NumericValue float64      `json:"numericValue"`
	Display      string       `json:"display"`
	Disciplines  []Discipline `json:"disciplines"`
}

func boulder(v float64, display string) Grade {
	return Grade{NumericValue: v, Display: display, Disciplines: []Discipline{Boulder}}
}

func yds(v float64, display string) Grade {
	return Grade{NumericValue: v, Display: display, Disciplines: []Discipline{Lead, TopRope}}
}

// catalog is built once and never mutated. Definition order matters:
// ForDiscipline returns entries in this order, not sorted by difficulty.
var catalog = []Grade{
	// V-scale (bouldering)
	boulder(0.0, "V0"),
	boulder(1.0, "V1"),
	boulder(2.0, "V2"),
	boulder(3.0, "V3"),
	boulder(4.0, "V4"),
	boulder(5.0, "V5"),
	boulder(6.0, "V6"),
	boulder(7.0, "V7"),
	boulder(8.0, "V8"),
	boulder(9.0, "V9"),
	boulder(10.0, "V10"),
	boulder(11.0, "V11"),
	boulder(12.0, "V12"),
	boulder(13.0, "V13"),
	boulder(14.0, "V14"),
	boulder(15.0, "V15"),
	boulder(16.0, "V16"),
	boulder(17.0, "V17"),

	// YDS (lead and top rope); letter grades encoded as .1/.2/.3/.4
	yds(6.0, "5.6"),
	yds(7.0, "5.7"),
	yds(8.0, "5.8"),
	yds(9.0, "5.9"),
	yds(10.1, "5.10a"),
	yds(10.2, "5.10b"),
	yds(10.3, "5.10c"),
	yds(10.4, "5.10d"),
	yds(11.1, "5.11a"),
	yds(11.2, "5.11b"),
	yds(11.3, "5.11c"),
	yds(11.4, "5.11d"),
	yds(12.1, "5.12a"),
	yds(12.2, "5.12b"),
	yds(12.3, "5.12c"),
	yds(12.4, "5.12d"),
	yds(13.1, "5.13a"),
	yds(13.2, "5.13b"),
	yds(13.3, "5.13c"),
	yds(13.4, "5.13d"),
	yds(14.1, "5.14a"),
	yds(14.2, "5.14b"),
	yds(14.3, "5.14c"),
	yds(14.4, "5.14d"),
	yds(15.1, "5.15a"),
	yds(15.2, "5.15b"),
	yds(15.3, "5.15c"),
	yds(15.4, "5.15d"),
}

// All returns the full catalog in definition order.
func All() []Grade {
	out := make([]Grade, len(catalog))
	copy(out, catalog)
	return out
}

func (g Grade) Supports(d Discipline) bool {
	for _, supported := range g.Disciplines {
		if supported == d {
			return true
		}
	}
	return false
}

// FromString matches the display value case-insensitively across the whole
// catalog.
func FromString(s string) (Grade, error) {
	for _, g := range catalog {
		if strings.EqualFold(g.Display, s) {
			return g, nil
		}
	}
	return Grade{}, fmt.Errorf("invalid grade: %q", s)
}

// FromStringForDiscipline is FromString restricted to grades that support d.
// The error lists the valid display strings so clients can self-correct.
func FromStringForDiscipline(s string, d Discipline) (Grade, error) {
	for _, g := range catalog {
		if strings.EqualFold(g.Display, s) && g.Supports(d) {
			return g, nil
		}
	}
	return Grade{}, fmt.Errorf("invalid grade %q for discipline %s; supported grades for %s: %s",
		s, d, d, strings.Join(displaysFor(d), ", "))
}

// FromNumeric requires exact equality on the numeric value. Catalog values
// are exact decimal literals, so there is deliberately no tolerance here.
func FromNumeric(v float64, d Discipline) (Grade, error) {
	for _, g := range catalog {
		if g.NumericValue == v && g.Supports(d) {
			return g, nil
		}
	}
	return Grade{}, fmt.Errorf("invalid numeric value %v for discipline %s", v, d)
}

// ForDiscipline returns catalog entries supporting d, in definition order.
func ForDiscipline(d Discipline) []Grade {
	var out []Grade
	for _, g := range catalog {
		if g.Supports(d) {
			out = append(out, g)
		}
	}
	return out
}

// NumericToDisplay converts a stored numeric value back to its display
// string, falling back to a formatted literal for values outside the catalog.
func NumericToDisplay(v float64, d Discipline) string {
	if g, err := FromNumeric(v, d); err == nil {
		return g.Display
	}
	if d == Boulder {
		return fmt.Sprintf("V%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// IsValid reports whether s names a catalog grade that supports d.
func IsValid(s string, d Discipline) bool {
	g, err := FromString(s)
	if err != nil {
		return false
	}
	return g.Supports(d)
}

func displaysFor(d Discipline) []string {
	var out []string
	for _, g := range catalog {
		if g.Supports(d) {
			out = append(out, g.Display)
		}
	}
	return out
}
