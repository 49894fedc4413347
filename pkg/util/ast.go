package util

import (
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	// register the value expression implementation used by the parser
	_ "github.com/pingcap/tidb/pkg/types/parser_driver"
)

var ParserPool = sync.Pool{
	New: func() any {
		return parser.New()
	},
}

type tableNameVisitor struct {
	currDB     string
	tableNames [][2]string
	seen       map[[2]string]struct{}
	cteNames   map[string]struct{}
}

func (v *tableNameVisitor) Enter(in ast.Node) (out ast.Node, skipChildren bool) {
	switch n := in.(type) {
	case *ast.CommonTableExpression:
		v.cteNames[n.Name.L] = struct{}{}
	case *ast.TableName:
		schema := n.Schema.L
		if schema == "" {
			if _, ok := v.cteNames[n.Name.L]; ok {
				return in, false
			}
			schema = v.currDB
		}
		name := [2]string{schema, n.Name.L}
		if _, ok := v.seen[name]; !ok {
			v.seen[name] = struct{}{}
			v.tableNames = append(v.tableNames, name)
		}
	}
	return in, false
}

func (v *tableNameVisitor) Leave(in ast.Node) (out ast.Node, ok bool) {
	return in, true
}

// ExtractTableNames extracts distinct table names from a statement node in the
// order of appearance. Names of common table expressions are skipped.
func ExtractTableNames(s ast.StmtNode, currDB string) [][2]string {
	v := &tableNameVisitor{
		currDB:   currDB,
		seen:     make(map[[2]string]struct{}),
		cteNames: make(map[string]struct{}),
	}
	s.Accept(v)
	return v.tableNames
}

type aliasVisitor struct {
	aliases map[string]string
}

func (v *aliasVisitor) Enter(in ast.Node) (out ast.Node, skipChildren bool) {
	if ts, ok := in.(*ast.TableSource); ok && ts.AsName.L != "" {
		if tn, ok := ts.Source.(*ast.TableName); ok {
			v.aliases[ts.AsName.L] = tn.Name.L
		}
	}
	return in, false
}

func (v *aliasVisitor) Leave(in ast.Node) (out ast.Node, ok bool) {
	return in, true
}

// ExtractTableAliases returns the mapping from lower-cased table alias to the
// lower-cased table name, like {"foo": "t1"} for "SELECT * FROM t1 foo".
func ExtractTableAliases(s ast.StmtNode) map[string]string {
	v := &aliasVisitor{aliases: make(map[string]string)}
	s.Accept(v)
	return v.aliases
}

// ParseOneStmt parses a single SQL statement with a pooled parser.
func ParseOneStmt(sql string) (ast.StmtNode, error) {
	p := ParserPool.Get().(*parser.Parser)
	defer ParserPool.Put(p)
	return p.ParseOneStmt(sql, "", "")
}
