package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReportCardSubject is one printed subject row.
type ReportCardSubject struct {
	Name          string
	Code          string
	TotalScore    float64
	Grade         string
	Remark        string
	Position      int
	TotalStudents int
	Comment       string
}

// LabelValue is a generic printed pair, e.g. a behaviour rating.
type LabelValue struct {
	Label string
	Value string
}

// ReportCardDocument is the printable view of a computed result.
type ReportCardDocument struct {
	SchoolName   string
	SchoolMotto  string
	StudentName  string
	StudentID    string
	ClassName    string
	AcademicYear string
	Term         string
	ExamType     string

	Subjects []ReportCardSubject

	TotalScore    float64
	AverageScore  float64
	OverallGrade  string
	OverallGPA    float64
	Position      int
	TotalStudents int
	Promoted      bool
	NextClass     string

	DaysPresent          int
	DaysTotal            int
	AttendancePercentage float64

	Behavior   []LabelValue
	Activities []LabelValue

	ClassTeacherComment string
	PrincipalComment    string
	ResumptionDate      *time.Time
	GeneratedAt         time.Time
}

// PDFExporter renders report cards and tabular class sheets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape PDF with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := 277.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderReportCard lays out a single student's report card on A4 portrait.
func (e *PDFExporter) RenderReportCard(doc ReportCardDocument) ([]byte, error) {
	if doc.StudentName == "" && doc.StudentID == "" {
		return nil, fmt.Errorf("report card requires a student")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, tr(strings.ToUpper(doc.SchoolName)), "", 1, "C", false, 0, "")
	if doc.SchoolMotto != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 5, tr(doc.SchoolMotto), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s REPORT - %s, %s", strings.ToUpper(doc.ExamType), doc.Term, doc.AcademicYear)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(93, 6, tr("Name: "+doc.StudentName), "", 0, "", false, 0, "")
	pdf.CellFormat(93, 6, tr("Student ID: "+doc.StudentID), "", 1, "R", false, 0, "")
	pdf.CellFormat(93, 6, tr("Class: "+doc.ClassName), "", 0, "", false, 0, "")
	pdf.CellFormat(93, 6, fmt.Sprintf("Position: %s", ordinalOf(doc.Position, doc.TotalStudents)), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	widths := []float64{60, 20, 20, 16, 40, 30}
	headers := []string{"Subject", "Code", "Total", "Grade", "Remark", "Position"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, subject := range doc.Subjects {
		cells := []string{
			subject.Name,
			subject.Code,
			fmt.Sprintf("%.2f", subject.TotalScore),
			subject.Grade,
			subject.Remark,
			ordinalOf(subject.Position, subject.TotalStudents),
		}
		for i, cell := range cells {
			align := "C"
			if i == 0 || i == 4 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	promotion := "Not promoted"
	if doc.Promoted {
		promotion = "Promoted"
		if doc.NextClass != "" {
			promotion += " to " + doc.NextClass
		}
	}
	summary := []LabelValue{
		{"Total score", fmt.Sprintf("%.2f", doc.TotalScore)},
		{"Average", fmt.Sprintf("%.2f", doc.AverageScore)},
		{"Overall grade", doc.OverallGrade},
		{"GPA", fmt.Sprintf("%.2f", doc.OverallGPA)},
		{"Attendance", fmt.Sprintf("%d of %d days (%.2f%%)", doc.DaysPresent, doc.DaysTotal, doc.AttendancePercentage)},
		{"Promotion", promotion},
	}
	writePairs(pdf, tr, summary)

	if len(doc.Behavior) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Behaviour", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		writePairs(pdf, tr, doc.Behavior)
	}
	if len(doc.Activities) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Activities", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		writePairs(pdf, tr, doc.Activities)
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 5, "Class teacher's comment", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, tr(orDash(doc.ClassTeacherComment)), "", "", false)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 5, "Principal's comment", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, tr(orDash(doc.PrincipalComment)), "", "", false)

	pdf.Ln(3)
	pdf.SetFont("Arial", "I", 8)
	if doc.ResumptionDate != nil {
		pdf.CellFormat(0, 5, "Next term begins "+doc.ResumptionDate.Format("2 January 2006"), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, 5, "Generated "+doc.GeneratedAt.UTC().Format(time.RFC1123), "", 1, "R", false, 0, "")

	return output(pdf)
}

func writePairs(pdf *gofpdf.Fpdf, tr func(string) string, pairs []LabelValue) {
	for _, pair := range pairs {
		pdf.CellFormat(50, 5, tr(pair.Label), "", 0, "", false, 0, "")
		pdf.CellFormat(0, 5, tr(pair.Value), "", 1, "", false, 0, "")
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// ordinalOf formats a rank as "3rd of 40"; an unranked entry prints a dash.
func ordinalOf(position, total int) string {
	if position <= 0 {
		return "-"
	}
	suffix := "th"
	switch position % 100 {
	case 11, 12, 13:
	default:
		switch position % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	if total > 0 {
		return fmt.Sprintf("%d%s of %d", position, suffix, total)
	}
	return fmt.Sprintf("%d%s", position, suffix)
}
