package compare

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/lance6716/plan-diff/pkg/fetch"
)

// splitSides splits the input of a test case into the old and the new plan by
// a line of "~~~".
func splitSides(t *testing.T, d *datadriven.TestData) (string, string) {
	a, b, found := strings.Cut(d.Input, "\n~~~\n")
	if !found {
		d.Fatalf(t, "input should contain two plans separated by ~~~")
	}
	return a, b
}

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "normalize":
				return strings.Join(Normalize(d.Input), "\n")
			case "compare":
				a, b := splitSides(t, d)
				oldRes, newRes := success(1, "old", a), success(1, "new", b)
				if d.HasArg("old-error") {
					oldRes = failure(1, "old", fetch.TimeoutMessage)
				}
				if d.HasArg("new-error") {
					newRes = failure(1, "new", fetch.TimeoutMessage)
				}
				got := Compare(oldRes, newRes)
				return fmt.Sprintf("similarity=%.4f classification=%s", got.Similarity, got.Classification)
			case "diff":
				a, b := splitSides(t, d)
				var sb strings.Builder
				for _, row := range DiffLines(Normalize(a), Normalize(b)) {
					line := fmt.Sprintf("%-7s %2d %2d | %s | %s",
						row.Kind, row.OldLine, row.NewLine, row.OldText, row.NewText)
					sb.WriteString(strings.TrimRight(line, " ") + "\n")
				}
				return sb.String()
			default:
				d.Fatalf(t, "unknown command %s", d.Cmd)
				return ""
			}
		})
	})
}
