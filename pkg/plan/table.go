package plan

import (
	"slices"
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/util/texttree"
)

// IsTable checks if text looks like a TiDB EXPLAIN result in the layout of
// `mysql --batch`, whose header has the `id` and `task` columns.
func IsTable(text string) bool {
	header, _, _ := strings.Cut(text, "\n")
	columns := splitColumns(header)
	return slices.Contains(columns, "id") && slices.Contains(columns, "task")
}

// splitColumns splits a line by tabs. Leading spaces are kept because they are
// part of the tree prefix of the `id` column.
func splitColumns(line string) []string {
	columns := strings.Split(strings.TrimPrefix(line, "\t"), "\t")
	for i := range columns {
		columns[i] = strings.TrimRight(columns[i], " \r")
	}
	return columns
}

// ParseTable parses a TiDB EXPLAIN result in the layout of `mysql --batch` into
// an Op tree. The access object is read from the `access object` column, or
// the `operator info` column for old versions and statement summary plans,
// which also prefix every line with a tab.
func ParseTable(text string) (*Op, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) < 2 {
		// there should be at least a header and a plan line
		return nil, errors.Errorf("invalid plan table: %s", text)
	}
	columns := splitColumns(lines[0])
	idIdx := slices.Index(columns, "id")
	if idIdx == -1 {
		return nil, errors.Errorf("column `id` not found in the header: %s", lines[0])
	}
	taskIdx := slices.Index(columns, "task")
	if taskIdx == -1 {
		return nil, errors.Errorf("column `task` not found in the header: %s", lines[0])
	}
	objIdx := slices.Index(columns, "access object")
	if objIdx == -1 {
		objIdx = slices.Index(columns, "operator info")
	}
	if objIdx == -1 {
		return nil, errors.Errorf(
			"column `access object` or `operator info` not found in the header: %s", lines[0])
	}

	rows := make([][3]string, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		fields := splitColumns(lines[i])
		if len(fields) != len(columns) {
			return nil, errors.Errorf(
				"column count mismatch at line %d\nfirst line: %s\nmismatch line: %s",
				i, lines[0], lines[i],
			)
		}
		rows = append(rows, [3]string{fields[idIdx], fields[taskIdx], fields[objIdx]})
	}
	return newPlanFromRows(rows)
}

// newPlanFromRows builds the Op tree from [id, task, access object] fields.
// The tree structure is encoded by the texttree prefix of the `id` column.
func newPlanFromRows(rows [][3]string) (*Op, error) {
	if len(rows) == 0 {
		return nil, errors.New("input has zero length")
	}
	stack := make([]*Op, 0, len(rows)/2+1)

	for _, fields := range rows {
		id, task, accessObject := fields[0], fields[1], fields[2]
		if id == "" {
			return nil, errors.New("`id` column is empty")
		}
		// tree characters are multi-byte
		runes := []rune(id)
		indent := 0
	countIndent:
		for _, r := range runes {
			switch r {
			case texttree.TreeBody, texttree.TreeMiddleNode,
				texttree.TreeLastNode, texttree.TreeGap,
				texttree.TreeNodeIdentifier:
				indent++
			default:
				break countIndent
			}
		}
		if indent%2 != 0 {
			return nil, errors.Errorf(
				"the indent is not expected, its length should be a multiple of 2: %s", id)
		}
		level := indent / 2
		if level > len(stack) || (level == 0 && len(stack) > 0) {
			return nil, errors.Errorf(
				"the indent level (%d) does not match the stack size (%d): %s",
				level, len(stack), id)
		}
		stack = stack[:level]

		op, err := NewOp(string(runes[indent:]), task, accessObject)
		if err != nil {
			return nil, err
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, op)
		}
		stack = append(stack, op)
	}
	return stack[0], nil
}
