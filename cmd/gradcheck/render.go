package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gradcheck/backend/internal/analysis"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Foreground(lipgloss.Color("#C0C0C0"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// renderReport 终端报表：结论、学分表、드볼 领域、未修전공필수
func renderReport(a *analysis.Analysis) string {
	res := a.Result
	status := failStyle.Render("✗ " + res.Message)
	if res.Complete() {
		status = okStyle.Render("✓ " + res.Message)
	}

	sections := []string{
		titleStyle.Render(a.Requirement.Major + " 졸업 요건"),
		status,
		cardStyle.Render(creditTable(a.CreditSummary())),
	}
	if len(a.Breadth.Areas) > 0 {
		sections = append(sections, cardStyle.Render(breadthTable(a.Breadth)))
	}
	if missing := a.AllMissingRequired(); len(missing) > 0 {
		sections = append(sections, cardStyle.Render(missingList(missing)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func creditTable(lines []analysis.CreditLine) string {
	rows := []string{headerStyle.Render(fmt.Sprintf("%-14s %6s %6s %6s", "구분", "이수", "기준", "부족"))}
	for _, l := range lines {
		mark := okStyle.Render("✓")
		if !l.Satisfied {
			mark = failStyle.Render("✗")
		}
		rows = append(rows, fmt.Sprintf("%s %6d %6d %6d  %s",
			padRight(l.Category, 14), l.Completed, l.Required, l.Remaining, mark))
	}
	return strings.Join(rows, "\n")
}

func breadthTable(b analysis.BreadthStatus) string {
	rows := []string{headerStyle.Render(fmt.Sprintf("드볼 영역 %d/%d", b.AreasCovered, b.AreasRequired))}
	for _, area := range b.Areas {
		line := fmt.Sprintf("%s %2d과목 %3d학점", padRight(area.Area, 14), area.CoursesCount, area.CompletedCredit)
		if area.Covered {
			rows = append(rows, okStyle.Render(line))
		} else {
			rows = append(rows, mutedStyle.Render(line))
		}
	}
	if b.ExceptionApplied {
		rows = append(rows, mutedStyle.Render("* 학점 특례 적용"))
	}
	return strings.Join(rows, "\n")
}

func missingList(missing []analysis.MissingCourse) string {
	rows := []string{headerStyle.Render("미이수 전공필수")}
	for _, m := range missing {
		rows = append(rows, fmt.Sprintf("%s %s %s", padRight(m.Semester, 6), m.Code, m.Name))
	}
	return strings.Join(rows, "\n")
}

// padRight 按显示宽度补齐（韩文占两列）
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
