package compare

import (
	"strings"

	"github.com/lance6716/plan-diff/pkg/plan"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/util/plancodec"
)

// TreeVerdict is the result of comparing two operator trees.
type TreeVerdict string

const (
	TreeSame      TreeVerdict = "same"
	TreeDifferent TreeVerdict = "different"
)

// CmpPlan compares two TiDB operator trees of sql. Projection operators and
// table aliases are ignored. Please note that the input will be modified
// in-place.
func CmpPlan(sql string, a, b *plan.Op) (TreeVerdict, error) {
	// projection will not affect the performance, so we remove it before comparing.
	removeProj(a)
	removeProj(b)
	if err := normalizeTableNameAlias(sql, a, b); err != nil {
		return "", err
	}
	return cmpPlan(a, b), nil
}

func cmpPlan(a, b *plan.Op) TreeVerdict {
	if a.Type != b.Type {
		return TreeDifferent
	}
	if !sameAccessObject(a.AccessObject, b.AccessObject) {
		return TreeDifferent
	}
	if len(a.Children) != len(b.Children) {
		return TreeDifferent
	}
	for i := range a.Children {
		if r := cmpPlan(a.Children[i], b.Children[i]); r != TreeSame {
			return r
		}
	}
	return TreeSame
}

func sameAccessObject(a, b *plan.AccessObject) bool {
	if a == nil || b == nil {
		return a == b
	}
	return strings.EqualFold(a.Table, b.Table) && strings.EqualFold(a.Index, b.Index)
}

// removeProj removes the Projection operators from the plan tree in-place.
func removeProj(p *plan.Op) {
	for p.Type == plancodec.TypeProj && len(p.Children) == 1 {
		*p = *p.Children[0]
	}
	for _, child := range p.Children {
		removeProj(child)
	}
}

// normalizeTableNameAlias replaces the table aliases of sql in the access
// objects of the trees with the table names.
func normalizeTableNameAlias(sql string, trees ...*plan.Op) error {
	stmt, err := util.ParseOneStmt(sql)
	if err != nil {
		return errors.Trace(err)
	}
	aliases := util.ExtractTableAliases(stmt)
	if len(aliases) == 0 {
		return nil
	}
	for _, tree := range trees {
		tree.Walk(func(op *plan.Op) {
			if op.AccessObject == nil || op.AccessObject.Table == "" {
				return
			}
			// an alias never refers to another alias, so one lookup is enough
			if table, ok := aliases[strings.ToLower(op.AccessObject.Table)]; ok {
				op.AccessObject.Table = table
			}
		})
	}
	return nil
}
