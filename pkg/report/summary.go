package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteSummary prints the counts of m in a few lines for the console.
func WriteSummary(w io.Writer, m *ReportModel, reportPath string) error {
	ratio := func(n int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, float64(n)*100/float64(m.Total))
	}
	sep := strings.Repeat("=", 60)
	lines := []string{
		sep,
		"Explain plan comparison completed",
		sep,
		fmt.Sprintf("Total queries:      %d", m.Total),
		fmt.Sprintf("Identical plans:    %s", ratio(m.Counts.Identical)),
		fmt.Sprintf("Similar plans:      %s", ratio(m.Counts.Similar)),
		fmt.Sprintf("Different plans:    %s", ratio(m.Counts.Different)),
		fmt.Sprintf("Errored queries:    %s", ratio(m.Counts.Errored())),
		fmt.Sprintf("Average similarity: %.1f%%", m.AverageSimilarity*100),
		fmt.Sprintf("Report:             %s", reportPath),
		sep,
	}
	if m.Partial {
		lines = append(lines, fmt.Sprintf(
			"The run was interrupted, %d of %d queries are reported.", m.Total, m.Loaded))
	}
	if m.Counts.Errored() > 0 {
		lines = append(lines, "Some queries had errors, see the report for details.")
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
