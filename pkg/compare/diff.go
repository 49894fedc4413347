package compare

import "github.com/pmezard/go-difflib/difflib"

// DiffKind is the kind of a DiffRow.
type DiffKind string

const (
	DiffEqual   DiffKind = "equal"
	DiffDelete  DiffKind = "delete"
	DiffInsert  DiffKind = "insert"
	DiffReplace DiffKind = "replace"
)

// DiffRow is one row of the side-by-side view of two normalized plans. A line
// number is 0 when the side has no line in this row.
type DiffRow struct {
	Kind    DiffKind `json:"kind"`
	OldLine int      `json:"old_line,omitempty"`
	NewLine int      `json:"new_line,omitempty"`
	OldText string   `json:"old_text,omitempty"`
	NewText string   `json:"new_text,omitempty"`
}

// DiffLines returns the side-by-side rows of a and b. A replaced block with
// different lengths is padded by delete or insert rows.
func DiffLines(a, b []string) []DiffRow {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	m := difflib.NewMatcher(a, b)
	var rows []DiffRow
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				rows = append(rows, DiffRow{
					Kind:    DiffEqual,
					OldLine: op.I1 + k + 1,
					NewLine: op.J1 + k + 1,
					OldText: a[op.I1+k],
					NewText: b[op.J1+k],
				})
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				rows = append(rows, DiffRow{Kind: DiffDelete, OldLine: i + 1, OldText: a[i]})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				rows = append(rows, DiffRow{Kind: DiffInsert, NewLine: j + 1, NewText: b[j]})
			}
		case 'r':
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				i, j := op.I1+k, op.J1+k
				row := DiffRow{Kind: DiffReplace}
				if i < op.I2 {
					row.OldLine, row.OldText = i+1, a[i]
				} else {
					row.Kind = DiffInsert
				}
				if j < op.J2 {
					row.NewLine, row.NewText = j+1, b[j]
				} else {
					row.Kind = DiffDelete
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}
