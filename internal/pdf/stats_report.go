package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmanager/internal/models"
)

// Generator is the seam handlers depend on; tests substitute it.
type Generator interface {
	GenerateStatsReport(w io.Writer, data StatsReportData) error
}

type StatsReportData struct {
	Stats       *models.TaskStats
	GeneratedAt time.Time
}

// ReportGenerator renders task statistics as an A4 PDF.
type ReportGenerator struct {
	FontPath string // optional TTF, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
	utf8     bool
}

// NewReportGenerator falls back to the core Helvetica font when fontPath is
// empty or unreadable.
func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
			g.utf8 = true
		}
	}
	return g
}

func (g *ReportGenerator) GenerateStatsReport(w io.Writer, data StatsReportData) error {
	if data.Stats == nil {
		return fmt.Errorf("stats are required")
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task statistics", true)
	pdf.SetAuthor("Task Manager", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Task statistics", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, "Generated "+data.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== Summary
	s := data.Stats
	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Total", fmt.Sprintf("%d", s.Total))
	g.kvLine(pdf, "Overdue", fmt.Sprintf("%d", s.Overdue))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "By status")
	for _, st := range models.AllStatuses {
		g.kvLine(pdf, string(st), fmt.Sprintf("%d", s.ByStatus[st]))
	}
	pdf.Ln(2)

	g.sectionTitle(pdf, "By priority")
	for _, p := range models.AllPriorities {
		g.kvLine(pdf, string(p), fmt.Sprintf("%d", s.ByPriority[p]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Upcoming
	g.sectionTitle(pdf, "Due in the next 7 days")
	if len(s.Next7Days) == 0 {
		pdf.CellFormat(0, 6, "Nothing due.", "", 1, "L", false, 0, "")
	} else {
		g.upcomingTable(pdf, tr, s.Next7Days)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render stats report: %w", err)
	}
	return nil
}

func (g *ReportGenerator) upcomingTable(pdf *gofpdf.Fpdf, tr func(string) string, tasks []models.Task) {
	widths := []float64{15, 25, 90, 40}
	headers := []string{"ID", "Due", "Title", "Status"}

	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", t.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, due, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(truncate(t.Title, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, string(t.Status), "1", 1, "L", false, 0, "")
	}
}

// ===== helpers =====

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if !g.utf8 {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 text onto cp1252 for the core fonts.
func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.utf8 {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
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

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
