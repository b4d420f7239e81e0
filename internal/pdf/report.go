package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"ascend/internal/grades"
	"ascend/internal/models"
)

// ReportGenerator renders a user's climbing log into a downloadable PDF.
type ReportGenerator struct {
	fontName string
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

func (g *ReportGenerator) SessionReport(user *models.User, sessions []*models.Session, analytics *models.SessionAnalytics) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ascend Session Log", false)
	pdf.SetAuthor("Ascend", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "SESSION LOG", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s %s  -  %s", user.FirstName, user.LastName, time.Now().Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Total sessions", fmt.Sprintf("%d", analytics.TotalSessions))
	g.kvLine(pdf, "Sent rate", fmt.Sprintf("%.1f%%", analytics.SentPercentage))
	g.kvLine(pdf, "Average difficulty", fmt.Sprintf("%.2f", analytics.AverageDifficulty))
	for _, d := range sortedDisciplines(analytics.SessionsByDiscipline) {
		g.kvLine(pdf, string(d), fmt.Sprintf("%d sessions", analytics.SessionsByDiscipline[d]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Sessions")
	g.tableHeader(pdf)
	for _, s := range sessions {
		g.tableRow(pdf, s)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render session report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(28, 7, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(32, 7, "Discipline", "B", 0, "L", false, 0, "")
	pdf.CellFormat(22, 7, "Grade", "B", 0, "L", false, 0, "")
	pdf.CellFormat(16, 7, "Sent", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Notes", "B", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
}

func (g *ReportGenerator) tableRow(pdf *gofpdf.Fpdf, s *models.Session) {
	sent := "no"
	if s.Sent {
		sent = "yes"
	}
	notes := s.Notes
	if len(notes) > 60 {
		notes = notes[:57] + "..."
	}
	pdf.CellFormat(28, 6, time.Time(s.Date).Format("2006-01-02"), "", 0, "L", false, 0, "")
	pdf.CellFormat(32, 6, string(s.Discipline), "", 0, "L", false, 0, "")
	pdf.CellFormat(22, 6, s.Grade, "", 0, "L", false, 0, "")
	pdf.CellFormat(16, 6, sent, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, notes, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func sortedDisciplines[V any](m map[grades.Discipline]V) []grades.Discipline {
	keys := make([]grades.Discipline, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
