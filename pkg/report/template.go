package report

const tpl = `<!DOCTYPE html>
<html>
 <head>
  <meta charset="UTF-8">
  <title>{{ .Title }}</title>
  <style>
   body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2em; color: #24292f; }
   table { border-collapse: collapse; margin-bottom: 1em; }
   th, td { border: 1px solid #d0d7de; padding: 4px 8px; text-align: left; vertical-align: top; }
   pre { margin: 0; white-space: pre-wrap; font-size: 12px; }
   .identical { color: #1a7f37; }
   .similar { color: #9a6700; }
   .different { color: #cf222e; }
   .errored_one, .errored_both { color: #8250df; }
   .diff td { font-family: monospace; font-size: 12px; }
   .diff .num { color: #6e7781; text-align: right; }
   .diff tr.delete td.old { background: #ffebe9; }
   .diff tr.insert td.new { background: #dafbe1; }
   .diff tr.replace td.old { background: #ffebe9; }
   .diff tr.replace td.new { background: #dafbe1; }
   .error { color: #cf222e; }
   .partial { background: #fff8c5; padding: 8px; border: 1px solid #d4a72c; }
  </style>
 </head>
 <body>
  <h1>{{ .Title }}</h1>
  {{ if .Partial }}
  <p class="partial">The run was interrupted, {{ .Total }} of {{ .Loaded }} queries are reported.</p>
  {{ end }}
  <p>Generated at {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }}{{ if .SQLFile }} from <code>{{ .SQLFile }}</code>{{ end }}</p>

  <h2>Targets</h2>
  <table>
   <tr><th>Target</th><th>DSN</th><th>Host</th><th>Database</th><th>Warehouse</th><th>Version</th></tr>
   {{ template "target" .Old }}
   {{ template "target" .New }}
   {{ with .Reference }}{{ template "target" . }}{{ end }}
  </table>

  <h2>Summary</h2>
  <table>
   <tr><th>Classification</th><th>Queries</th><th>Ratio</th></tr>
   <tr><td class="identical">Identical</td><td>{{ .Counts.Identical }}</td><td>{{ ratio .Counts.Identical .Total }}</td></tr>
   <tr><td class="similar">Similar</td><td>{{ .Counts.Similar }}</td><td>{{ ratio .Counts.Similar .Total }}</td></tr>
   <tr><td class="different">Different</td><td>{{ .Counts.Different }}</td><td>{{ ratio .Counts.Different .Total }}</td></tr>
   <tr><td class="errored_one">One side failed</td><td>{{ .Counts.ErroredOne }}</td><td>{{ ratio .Counts.ErroredOne .Total }}</td></tr>
   <tr><td class="errored_both">Both sides failed</td><td>{{ .Counts.ErroredBoth }}</td><td>{{ ratio .Counts.ErroredBoth .Total }}</td></tr>
   <tr><th>Total</th><th>{{ .Total }}</th><th></th></tr>
  </table>
  <p>Average similarity: <b>{{ percent .AverageSimilarity }}</b></p>

  <h2>Queries</h2>
  <table>
   <tr><th>#</th><th>Query</th><th>Classification</th><th>Similarity</th><th>{{ .Old.Label }}</th><th>{{ .New.Label }}</th></tr>
   {{ range .Outcomes }}
   <tr>
    <td><a href="#query-{{ .QueryIndex }}">{{ .QueryIndex }}</a></td>
    <td>{{ if .Query.Name }}<b>{{ .Query.Name }}</b><br>{{ end }}<code>{{ .Query.ShortSQL }}</code></td>
    <td class="{{ .Classification }}">{{ .Classification }}</td>
    <td>{{ percent .Similarity }}</td>
    <td>{{ seconds .Old.Elapsed }}</td>
    <td>{{ seconds .New.Elapsed }}</td>
   </tr>
   {{ end }}
  </table>

  <h2>Details</h2>
  {{ $old := .Old.Label }}{{ $new := .New.Label }}
  {{ range .Outcomes }}
  <h3 id="query-{{ .QueryIndex }}">Query {{ .QueryIndex }} <span class="{{ .Classification }}">{{ .Classification }}</span> {{ percent .Similarity }}</h3>
  {{ if .Tree }}<p>Operator tree ignoring projections and aliases: <b>{{ .Tree }}</b></p>{{ end }}
  <details>
   <summary>SQL</summary>
   <pre>{{ .Query.SQL }}</pre>
  </details>
  {{ if .Diff }}
  <table class="diff">
   <tr><th colspan="2">{{ $old }}</th><th colspan="2">{{ $new }}</th></tr>
   {{ range .Diff }}
   <tr class="{{ .Kind }}">
    <td class="num">{{ if .OldLine }}{{ .OldLine }}{{ end }}</td><td class="old"><pre>{{ .OldText }}</pre></td>
    <td class="num">{{ if .NewLine }}{{ .NewLine }}{{ end }}</td><td class="new"><pre>{{ .NewText }}</pre></td>
   </tr>
   {{ end }}
  </table>
  {{ end }}
  {{ template "plan" .Old }}
  {{ template "plan" .New }}
  {{ with .Reference }}{{ template "plan" . }}{{ end }}
  {{ end }}
 </body>
</html>

{{ define "target" }}
   <tr>
    <td>{{ .Label }}</td>
    <td><code>{{ .DSN }}</code></td>
    <td>{{ .Host }}</td>
    <td>{{ .Database }}</td>
    <td>{{ .Warehouse }}</td>
    <td>{{ if .Version }}<span title="{{ .RawVersion }}">{{ .Version }}</span>{{ else }}unknown{{ end }}</td>
   </tr>
{{ end }}

{{ define "plan" }}
  <details>
   <summary>{{ .Label }} plan ({{ seconds .Elapsed }})</summary>
   {{ if .OK }}<pre>{{ .PlanText }}</pre>{{ else }}<pre class="error">{{ .ErrText }}</pre>{{ end }}
  </details>
{{ end }}
`
