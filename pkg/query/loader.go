// Package query loads the benchmark query set from a SQL script.
package query

import (
	"os"
	"strings"

	"github.com/lance6716/plan-diff/pkg/util"
	"go.uber.org/zap"
)

// BenchmarkQuery is one statement of the benchmark script.
type BenchmarkQuery struct {
	// Index is the 1-based ordinal of the statement in the script.
	Index int `json:"index"`
	// Name is the text of the comment lines right above the statement, if any.
	Name string `json:"name,omitempty"`
	SQL  string `json:"sql"`
	// Tables are the tables referenced by SQL as [schema, table]. It's best
	// effort and empty when the TiDB parser can't understand the statement.
	Tables [][2]string `json:"tables,omitempty"`
}

// ShortSQL returns SQL on one line, truncated to 80 characters.
func (q BenchmarkQuery) ShortSQL() string {
	oneLine := []rune(strings.Join(strings.Fields(q.SQL), " "))
	if len(oneLine) <= 80 {
		return string(oneLine)
	}
	return string(oneLine[:77]) + "..."
}

// Load reads the SQL script at path and splits it into queries.
func Load(path string) ([]BenchmarkQuery, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, util.ErrParse.GenWithStackByArgs(path, err.Error())
	}
	queries := Parse(string(content))
	if len(queries) == 0 {
		return nil, util.ErrParse.GenWithStackByArgs(path, "no statement found")
	}
	return queries, nil
}

// Parse splits content into statements. A statement ends at a semicolon which
// is not inside a quoted string, a quoted identifier or a comment. The last
// statement may omit the semicolon. Lines starting with "--" are comments, and
// the comment block directly above a statement becomes its Name. The remaining
// lines of a statement are trimmed and joined by one space.
func Parse(content string) []BenchmarkQuery {
	var (
		ret      []BenchmarkQuery
		lines    []string
		comments []string
		cur      strings.Builder
		quote    rune
		inBlock  bool
	)

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
		sql := strings.TrimSpace(strings.Join(lines, " "))
		lines = lines[:0]
		if sql == "" {
			return
		}
		q := BenchmarkQuery{
			Index: len(ret) + 1,
			Name:  strings.Join(comments, " "),
			SQL:   sql,
		}
		q.Tables = extractTables(sql)
		ret = append(ret, q)
		comments = comments[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if quote == 0 && !inBlock && cur.Len() == 0 {
			if trimmed == "" {
				if len(lines) == 0 {
					// a blank line detaches the comments from the next statement
					comments = comments[:0]
				}
				continue
			}
			if strings.HasPrefix(trimmed, "--") {
				if len(lines) == 0 {
					if c := strings.TrimSpace(strings.TrimLeft(trimmed, "-")); c != "" {
						comments = append(comments, c)
					}
				}
				continue
			}
		}

		runes := []rune(trimmed)
		for i := 0; i < len(runes); i++ {
			r := runes[i]
			switch {
			case inBlock:
				cur.WriteRune(r)
				if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					cur.WriteRune('/')
					i++
					inBlock = false
				}
			case quote != 0:
				cur.WriteRune(r)
				if r == '\\' && quote != '`' && i+1 < len(runes) {
					cur.WriteRune(runes[i+1])
					i++
				} else if r == quote {
					quote = 0
				}
			case r == '\'' || r == '"' || r == '`':
				quote = r
				cur.WriteRune(r)
			case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
				inBlock = true
				cur.WriteString("/*")
				i++
			case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
				// trailing comment, skip the rest of the line
				i = len(runes)
			case r == ';':
				flush()
			default:
				cur.WriteRune(r)
			}
		}
		if quote != 0 || inBlock {
			cur.WriteByte('\n')
			continue
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}
	if quote != 0 || inBlock {
		util.Logger.Warn("unterminated quote or comment at the end of the query set")
	}
	flush()
	return ret
}

func extractTables(sql string) [][2]string {
	stmt, err := util.ParseOneStmt(sql)
	if err != nil {
		util.Logger.Debug("cannot parse query to extract tables",
			zap.String("sql", sql), zap.Error(err))
		return nil
	}
	return util.ExtractTableNames(stmt, "")
}
