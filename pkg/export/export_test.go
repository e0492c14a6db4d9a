package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterOrdersColumnsAndSanitizes(t *testing.T) {
	data := Dataset{
		Headers: []string{"student_id", "average", "comment"},
		Rows: []map[string]string{
			{"student_id": "STU250001", "average": "72.50", "comment": "=HYPERLINK(\"x\")"},
			{"student_id": "STU250002", "average": "-1", "comment": "Good, keep it up"},
		},
	}
	out, err := NewCSVExporter(false).Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student_id,average,comment", lines[0])
	assert.Equal(t, `STU250001,72.50,"'=HYPERLINK(""x"")"`, lines[1])
	assert.Equal(t, `STU250002,-1,"Good, keep it up"`, lines[2])

	withBOM, err := NewCSVExporter(true).Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withBOM, []byte("\ufeff")))

	_, err = NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRenderReportCard(t *testing.T) {
	resume := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	doc := ReportCardDocument{
		SchoolName:   "Unity College",
		StudentName:  "Ada Obi",
		StudentID:    "STU250001",
		ClassName:    "JSS1A",
		AcademicYear: "2025/2026",
		Term:         "First Term",
		ExamType:     "End-of-Term",
		Subjects: []ReportCardSubject{
			{Name: "Mathematics", Code: "MTH", TotalScore: 72.5, Grade: "B", Remark: "Good", Position: 2, TotalStudents: 30},
		},
		AverageScore:   72.5,
		OverallGrade:   "B",
		Promoted:       true,
		Behavior:       []LabelValue{{"Conduct", "Good"}},
		ResumptionDate: &resume,
		GeneratedAt:    time.Now(),
	}
	out, err := NewPDFExporter().RenderReportCard(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().RenderReportCard(ReportCardDocument{})
	assert.Error(t, err)
}

func TestPDFExporterRenderDataset(t *testing.T) {
	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"a"}, Rows: []map[string]string{{"a": "1"}}}, "Class sheet")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestOrdinalOf(t *testing.T) {
	assert.Equal(t, "1st of 3", ordinalOf(1, 3))
	assert.Equal(t, "2nd", ordinalOf(2, 0))
	assert.Equal(t, "13th of 40", ordinalOf(13, 40))
	assert.Equal(t, "23rd of 40", ordinalOf(23, 40))
	assert.Equal(t, "-", ordinalOf(0, 40))
}
