// Package plan parses TiDB EXPLAIN output into operator trees.
package plan

import (
	"strings"

	"github.com/pingcap/errors"
)

// AccessObject is the data source of a reader or scan operator.
type AccessObject struct {
	Table      string   `json:"table,omitempty"`
	Index      string   `json:"index,omitempty"`
	Partitions []string `json:"partitions,omitempty"`
}

// Op is one operator of a plan tree.
type Op struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	// Label is the suffix like "(Build)" or "(Probe)".
	Label string `json:"label,omitempty"`
	Task  string `json:"task,omitempty"`

	AccessObject *AccessObject `json:"access_object,omitempty"`

	Children []*Op `json:"children,omitempty"`
}

// NewOp creates an Op from the `id` column without tree characters, the `task`
// column and the `access object` (or `operator info`) column.
func NewOp(fullName, task, accessObject string) (*Op, error) {
	// fullName has the format of "{Type}_{ID}{Label}"
	underscore := strings.IndexByte(fullName, '_')
	lastDigit := strings.LastIndexAny(fullName, "0123456789")
	if underscore == -1 || lastDigit < underscore {
		return nil, errors.Errorf("invalid plan operator: %s", fullName)
	}
	op := &Op{
		Type:  fullName[:underscore],
		ID:    fullName[underscore+1 : lastDigit+1],
		Label: fullName[lastDigit+1:],
		Task:  task,
	}
	if accessObject != "" {
		obj, err := parseAccessObject(accessObject)
		if err != nil {
			return nil, err
		}
		op.AccessObject = obj
	}
	return op, nil
}

const (
	tablePrefix     = "table:"
	partitionPrefix = "partition:"
	indexPrefix     = "index:"
	objectSep       = ", "
)

// parseAccessObject parses the format of TiDB's AccessObject.String(). The
// `operator info` column starts with the same format, the remaining items
// are ignored. It returns nil for non-table objects like CTE.
func parseAccessObject(str string) (*AccessObject, error) {
	rest, ok := strings.CutPrefix(str, tablePrefix)
	if !ok {
		return nil, nil
	}
	obj := &AccessObject{}
	var item string
	item, rest = cutItem(rest)
	obj.Table = item

	if p, ok := strings.CutPrefix(rest, partitionPrefix); ok {
		item, rest = cutItem(p)
		obj.Partitions = strings.Split(item, ",")
	}
	if idx, ok := strings.CutPrefix(rest, indexPrefix); ok {
		item, _ = cutItem(idx)
		if strings.Count(item, "(") != strings.Count(item, ")") {
			return nil, errors.Errorf("unclosed parentheses of access object: %s", str)
		}
		obj.Index = item
	}
	return obj, nil
}

// cutItem cuts str at the first ", " outside parentheses. A trailing "," of
// the last item is dropped, it's printed for some memory tables.
func cutItem(str string) (item, rest string) {
	depth := 0
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 && strings.HasPrefix(str[i:], objectSep) {
				return str[:i], str[i+len(objectSep):]
			}
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(str), ","), ""
}

// NewOp4Test creates an Op for test. The input string should be in the format
// of
// - {fullName}, where fullName should not contain "|"
// - {fullName}|{accessObject}
func NewOp4Test(input string) *Op {
	fullName, accessObject, _ := strings.Cut(input, "|")
	op, err := NewOp(fullName, "test", accessObject)
	if err != nil {
		panic(err)
	}
	return op
}

// Clone returns a deep copy of the tree.
func (o *Op) Clone() *Op {
	ret := *o
	if o.AccessObject != nil {
		obj := *o.AccessObject
		ret.AccessObject = &obj
	}
	ret.Children = make([]*Op, len(o.Children))
	for i, child := range o.Children {
		ret.Children[i] = child.Clone()
	}
	if len(ret.Children) == 0 {
		ret.Children = nil
	}
	return &ret
}

// Walk calls fn on every operator in pre-order.
func (o *Op) Walk(fn func(*Op)) {
	fn(o)
	for _, child := range o.Children {
		child.Walk(fn)
	}
}
