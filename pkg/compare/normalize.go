package compare

import (
	"regexp"
	"slices"
	"strings"

	"github.com/lance6716/plan-diff/pkg/plan"
	"github.com/pingcap/tidb/pkg/util/plancodec"
)

// tidbVolatileColumns are the columns of a TiDB EXPLAIN table that change
// between runs of the same plan.
var tidbVolatileColumns = []string{
	"estRows", "estCost", "actRows", "execution info", "memory", "disk",
}

// mysqlVolatileColumns are the estimation columns of the classic MySQL EXPLAIN
// table, which is recognized by its select_type column.
var mysqlVolatileColumns = []string{"rows", "filtered"}

// operatorID matches "HashJoin_23". The name must be a TiDB operator type so
// identifiers like "Sales_2023" are kept.
var operatorID = regexp.MustCompile(`\b[A-Z][A-Za-z]*_\d+\b`)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules are applied to every line in order.
var rules = []rule{
	{regexp.MustCompile(`\bsession_id:\s*[\w-]+`), ""},
	{regexp.MustCompile(`\bquery_id:\s*[\w-]+`), ""},
	{regexp.MustCompile(`\btimestamp:\s*[\d-]+[ T][\d:.]+`), ""},
	{regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`), "0x?"},
	// "estimated rows: 1.00", "est. rows: 10", "estRows: 3"
	{regexp.MustCompile(`(?i)\best(?:imated|\.)?\s*rows\s*[:=]\s*[\d.,eE+-]+`), ""},
	// "estimated row count: 1,000 (100% of the table; stats collected 2 days ago)"
	{regexp.MustCompile(`(?i)\bestimated row count:.*$`), ""},
	// PostgreSQL "(cost=0.00..35.50 rows=2550 width=4)"
	{regexp.MustCompile(`\b(?:cost|rows|width)=[\d.]+(?:\.\.[\d.]+)?`), ""},
	{regexp.MustCompile(`(?i)^(?:planning|execution) time:.*$`), ""},
	// Databend scan statistics
	{regexp.MustCompile(`(?i)\b(?:read rows|read size|partitions total|partitions scanned):.*$`), ""},
	// cells of a bordered table
	{regexp.MustCompile(`^\|\s*(.*?)\s*\|$`), "$1"},
	{regexp.MustCompile(`\(\s*\)`), ""},
	{regexp.MustCompile(`\s+`), " "},
}

// emptyLine matches lines left with only table borders or tree characters.
var emptyLine = regexp.MustCompile(`^[\s+|=\-│├└─:]*$`)

// Normalize splits a plan into lines and removes the content that varies
// between runs of the same plan. The same plan text always gets the same
// lines. An empty plan gets no lines.
func Normalize(planText string) []string {
	switch {
	case plan.IsTable(planText):
		planText = dropColumns(planText, tidbVolatileColumns)
		planText = stripOperatorIDs(planText)
	case hasColumn(planText, "select_type"):
		planText = dropColumns(planText, mysqlVolatileColumns)
	}
	var lines []string
	for _, line := range strings.Split(planText, "\n") {
		line = strings.TrimSpace(line)
		if emptyLine.MatchString(line) {
			continue
		}
		for _, r := range rules {
			line = r.re.ReplaceAllString(line, r.repl)
		}
		line = strings.TrimSpace(line)
		if emptyLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// hasColumn reports whether the first line of a tab separated table has the
// named column.
func hasColumn(table, name string) bool {
	header, _, _ := strings.Cut(table, "\n")
	for _, column := range strings.Split(header, "\t") {
		if strings.TrimSpace(column) == name {
			return true
		}
	}
	return false
}

// stripOperatorIDs removes the ID suffix of TiDB operators, both in the id
// column and in references like "data:Selection_39".
func stripOperatorIDs(table string) string {
	return operatorID.ReplaceAllStringFunc(table, func(m string) string {
		name := m[:strings.LastIndexByte(m, '_')]
		if plancodec.TypeStringToPhysicalID(name) == 0 {
			return m
		}
		return name
	})
}

// dropColumns removes the named columns from a tab separated table.
func dropColumns(table string, names []string) string {
	lines := strings.Split(table, "\n")
	header := strings.Split(lines[0], "\t")
	keep := make([]bool, len(header))
	for i, name := range header {
		keep[i] = !slices.Contains(names, strings.TrimSpace(name))
	}
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			continue
		}
		kept := fields[:0]
		for j, f := range fields {
			if keep[j] {
				kept = append(kept, f)
			}
		}
		lines[i] = strings.Join(kept, "\t")
	}
	return strings.Join(lines, "\n")
}
