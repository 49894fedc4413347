package target

import (
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/lance6716/plan-diff/pkg/util"
)

// Version is the engine version reported by a target.
type Version struct {
	// Engine is the product name, like "TiDB", "MySQL" or "PostgreSQL".
	Engine string
	Number semver.Version
	// Raw is the unmodified version string.
	Raw string
}

func (v Version) String() string {
	return v.Engine + " v" + v.Number.String()
}

var versionNumber = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?(-[0-9A-Za-z.-]+)?`)

type engineRule struct {
	engine string
	// marker is matched case-insensitively in the raw string. The version
	// number is searched after the marker, unless numberFirst is set.
	marker      *regexp.Regexp
	numberFirst bool
}

func marker(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s))
}

// the order matters, more specific products first
var engineRules = []engineRule{
	{engine: "TiDB", marker: marker("-tidb-")},
	{engine: "MariaDB", marker: marker("-mariadb"), numberFirst: true},
	{engine: "CockroachDB", marker: marker("cockroachdb")},
	{engine: "Databend", marker: marker("databend")},
	{engine: "PostgreSQL", marker: marker("postgresql")},
	// "Microsoft SQL Server 2022 (RTM) - 16.0.1000.6 (X64)", skip the year
	{engine: "SQL Server", marker: marker("sql server")},
	{engine: "Snowflake", marker: marker("snowflake")},
}

// ParseVersion parses the result of the version query of supported engines. A
// bare version number like "8.0.36" or "8.0.36-log" is treated as MySQL. It
// returns util.ErrVersionParse rather than guessing when nothing matches.
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, util.ErrVersionParse.GenWithStackByArgs(raw)
	}
	for _, rule := range engineRules {
		loc := rule.marker.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}
		searchIn := trimmed[loc[1]:]
		if rule.numberFirst {
			searchIn = trimmed[:loc[0]]
		}
		if rule.engine == "SQL Server" {
			if dash := strings.Index(searchIn, " - "); dash != -1 {
				searchIn = searchIn[dash+3:]
			}
		}
		v, ok := parseNumber(searchIn)
		if !ok {
			return Version{}, util.ErrVersionParse.GenWithStackByArgs(raw)
		}
		return Version{Engine: rule.engine, Number: v, Raw: raw}, nil
	}

	if trimmed[0] >= '0' && trimmed[0] <= '9' {
		if v, ok := parseNumber(trimmed); ok {
			return Version{Engine: "MySQL", Number: v, Raw: raw}, nil
		}
	}
	return Version{}, util.ErrVersionParse.GenWithStackByArgs(raw)
}

func parseNumber(s string) (semver.Version, bool) {
	m := versionNumber.FindStringSubmatch(s)
	if m == nil {
		return semver.Version{}, false
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	normalized := m[1] + "." + m[2] + "." + patch + m[4]
	v, err := semver.NewVersion(normalized)
	if err != nil {
		// pre-release part is not valid semver, drop it
		v, err = semver.NewVersion(m[1] + "." + m[2] + "." + patch)
		if err != nil {
			return semver.Version{}, false
		}
	}
	return *v, true
}
