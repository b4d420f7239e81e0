package grades

import (
	"strings"
	"testing"
)

func TestCatalogSize(t *testing.T) {
	all := All()
	if len(all) != 46 {
		t.Fatalf("expected 46 catalog entries, got %d", len(all))
	}
	if got := len(ForDiscipline(Boulder)); got != 18 {
		t.Fatalf("expected 18 boulder grades, got %d", got)
	}
	if got := len(ForDiscipline(Lead)); got != 28 {
		t.Fatalf("expected 28 lead grades, got %d", got)
	}
	if got := len(ForDiscipline(TopRope)); got != 28 {
		t.Fatalf("expected 28 top rope grades, got %d", got)
	}
}

func TestRoundTripAllEntries(t *testing.T) {
	for _, g := range All() {
		for _, d := range g.Disciplines {
			byString, err := FromStringForDiscipline(g.Display, d)
			if err != nil {
				t.Fatalf("%s/%s: %v", g.Display, d, err)
			}
			if byString.NumericValue != g.NumericValue {
				t.Fatalf("%s: numeric %v != %v", g.Display, byString.NumericValue, g.NumericValue)
			}
			byNumeric, err := FromNumeric(g.NumericValue, d)
			if err != nil {
				t.Fatalf("%v/%s: %v", g.NumericValue, d, err)
			}
			if byNumeric.Display != g.Display {
				t.Fatalf("%v: display %q != %q", g.NumericValue, byNumeric.Display, g.Display)
			}
		}
	}
}

func TestFromStringCaseInsensitive(t *testing.T) {
	g, err := FromString("v7")
	if err != nil {
		t.Fatal(err)
	}
	if g.Display != "V7" || g.NumericValue != 7.0 {
		t.Fatalf("unexpected grade: %+v", g)
	}
	if _, err := FromString("V99"); err == nil {
		t.Fatal("expected error for unknown grade")
	}
}

func TestLetterGradeEncoding(t *testing.T) {
	cases := map[string]float64{
		"5.10a": 10.1,
		"5.10d": 10.4,
		"5.12b": 12.2,
		"5.15d": 15.4,
	}
	for display, want := range cases {
		g, err := FromStringForDiscipline(display, Lead)
		if err != nil {
			t.Fatal(err)
		}
		if g.NumericValue != want {
			t.Fatalf("%s: got %v, want %v", display, g.NumericValue, want)
		}
	}
}

func TestCrossDisciplineRejection(t *testing.T) {
	_, err := FromStringForDiscipline("V3", Lead)
	if err == nil {
		t.Fatal("expected V3 to be rejected for LEAD")
	}
	if !strings.Contains(err.Error(), "supported grades for LEAD") {
		t.Fatalf("error should list supported grades: %v", err)
	}
	if strings.Contains(err.Error(), "V0") {
		t.Fatalf("error should not list boulder grades: %v", err)
	}

	if _, err := FromStringForDiscipline("5.11a", Boulder); err == nil {
		t.Fatal("expected 5.11a to be rejected for BOULDER")
	}
	if _, err := FromNumeric(10.1, Boulder); err == nil {
		t.Fatal("expected 10.1 to be rejected for BOULDER")
	}
}

func TestSharedNumericValuesStayInScale(t *testing.T) {
	// 6.0 through 17.0 exist on both scales only where a grade supports the
	// discipline; 7.0 is V7 for boulder and 5.7 for rope disciplines.
	g, err := FromNumeric(7.0, Boulder)
	if err != nil {
		t.Fatal(err)
	}
	if g.Display != "V7" {
		t.Fatalf("got %q, want V7", g.Display)
	}
	g, err = FromNumeric(7.0, TopRope)
	if err != nil {
		t.Fatal(err)
	}
	if g.Display != "5.7" {
		t.Fatalf("got %q, want 5.7", g.Display)
	}
}

func TestNumericToDisplayFallback(t *testing.T) {
	if got := NumericToDisplay(3.0, Boulder); got != "V3" {
		t.Fatalf("got %q", got)
	}
	if got := NumericToDisplay(42.0, Boulder); got != "V42" {
		t.Fatalf("got %q", got)
	}
	if got := NumericToDisplay(11.2, Lead); got != "5.11b" {
		t.Fatalf("got %q", got)
	}
	if got := NumericToDisplay(99.9, Lead); got != "99.9" {
		t.Fatalf("got %q", got)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("V10", Boulder) {
		t.Fatal("V10 should be valid for BOULDER")
	}
	if IsValid("V10", Lead) {
		t.Fatal("V10 should not be valid for LEAD")
	}
	if IsValid("nonsense", Boulder) {
		t.Fatal("nonsense should not be valid")
	}
}

func TestParseDiscipline(t *testing.T) {
	for _, raw := range []string{"boulder", "BOULDER", " Boulder "} {
		d, err := ParseDiscipline(raw)
		if err != nil {
			t.Fatal(err)
		}
		if d != Boulder {
			t.Fatalf("got %s", d)
		}
	}
	if _, err := ParseDiscipline("SPEED"); err == nil {
		t.Fatal("expected error for unknown discipline")
	}
}
