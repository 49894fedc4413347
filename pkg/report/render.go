package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
)

var funcs = template.FuncMap{
	"percent": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
	"ratio": func(n, total int) string {
		if total == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
	},
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%.3fs", d.Seconds())
	},
}

var t = template.Must(template.New("report").Funcs(funcs).Parse(tpl))

// Render writes the HTML report of m to outFilename. The file is replaced
// atomically so a reader never sees a half-written report.
func Render(m *ReportModel, outFilename string) error {
	var buf bytes.Buffer
	if err := render(m, &buf); err != nil {
		return err
	}
	return errors.Annotatef(util.AtomicWrite(outFilename, buf.Bytes()), "write report")
}

func render(m *ReportModel, w io.Writer) error {
	return errors.Trace(t.Execute(w, m))
}

// EncodeJSON returns the indented JSON of m, for machines to consume the
// report.
func EncodeJSON(m *ReportModel) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	return data, errors.Trace(err)
}
