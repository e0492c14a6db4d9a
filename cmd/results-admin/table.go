package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/service"
)

func renderRanking(w io.Writer, summary *service.RankingSummary) {
	results := append([]models.Result(nil), summary.Results...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallPerformance.Position < results[j].OverallPerformance.Position
	})

	reopened := make(map[string]bool, len(summary.Reopened))
	for _, id := range summary.Reopened {
		reopened[id] = true
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{
				PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignLeft},
			},
		},
	}))
	table.Header("Position", "Student", "Average", "Grade", "Status")
	for _, r := range results {
		status := string(r.Status)
		if reopened[r.ID] {
			status += " (reopened)"
		}
		_ = table.Append(
			fmt.Sprintf("%d/%d", r.OverallPerformance.Position, r.OverallPerformance.TotalStudents),
			r.StudentID,
			fmt.Sprintf("%.2f", r.OverallPerformance.AverageScore),
			r.OverallPerformance.OverallGrade,
			status,
		)
	}
	c := summary.Cohort
	table.Footer(fmt.Sprintf("%s %s %s", c.ClassName, c.AcademicYear, c.Term), "policy: "+string(summary.Policy), fmt.Sprintf("%d ranked", summary.Ranked), "", "")
	_ = table.Render()
}

func renderTerms(w io.Writer, terms []models.Term) {
	table := tablewriter.NewTable(w)
	table.Header("ID", "Year", "Term", "Start", "End", "Active")
	for _, t := range terms {
		active := ""
		if t.IsActive {
			active = "yes"
		}
		_ = table.Append(t.ID, t.AcademicYear, t.Name, t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02"), active)
	}
	_ = table.Render()
}
