// Package folder collapses archive directory paths into short service
// identifiers used to group records.
package folder

import (
	"path"
	"regexp"
	"strings"
)

// Root is returned when a path has no usable segments.
const Root = "root"

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

var noise = map[string]bool{
	"logs":   true,
	"log":    true,
	"var":    true,
	"tmp":    true,
	"data":   true,
	"output": true,
}

// IsNoise reports whether seg is a generic container name rather than a
// service name.
func IsNoise(seg string) bool {
	return noise[strings.ToLower(seg)]
}

func cleanSegments(dir string) []string {
	var out []string
	for _, seg := range strings.Split(strings.ReplaceAll(dir, "\\", "/"), "/") {
		switch {
		case seg == "", seg == ".":
		case datePrefix.MatchString(seg):
		case strings.HasPrefix(seg, "__"):
		default:
			out = append(out, seg)
		}
	}
	return out
}

// Normalize maps a directory path to a service identifier. It is a pure
// function of dir:
//
//	Normalize("var/serviceA/2024-01-01/log") == "serviceA"
//	Normalize("prod/api/worker/logs")        == "prod/api"
//	Normalize("logs/tmp")                    == "logs/tmp"
func Normalize(dir string) string {
	segs := cleanSegments(dir)

	var meaningful []int
	for i, s := range segs {
		if !IsNoise(s) {
			meaningful = append(meaningful, i)
		}
	}

	switch {
	case len(meaningful) >= 2:
		return segs[meaningful[0]] + "/" + segs[meaningful[1]]
	case len(meaningful) == 1:
		used := meaningful[0]
		for i, s := range segs {
			if i != used && !IsNoise(s) {
				return segs[used] + "/" + s
			}
		}
		return segs[used]
	case len(segs) >= 2:
		return segs[0] + "/" + segs[1]
	case len(segs) == 1:
		return segs[0]
	default:
		return Root
	}
}

// FromFile normalizes the directory portion of a sanitized file path.
func FromFile(p string) string {
	return Normalize(path.Dir(strings.ReplaceAll(p, "\\", "/")))
}
