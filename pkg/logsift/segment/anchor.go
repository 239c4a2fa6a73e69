package segment

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Pattern selects how strictly anchor lines are recognised.
type Pattern int

const (
	// Permissive needs a leading YYYY-MM-DD and a severity marker later on
	// the line, after whitespace. Used for archive and local extraction.
	Permissive Pattern = iota

	// Strict needs YYYY-MM-DD[T ]HH:MM:SS, optional fraction and zone,
	// then whitespace and a bracketed marker. Used for tailing.
	Strict
)

func (p Pattern) String() string {
	switch p {
	case Strict:
		return "strict"
	default:
		return "permissive"
	}
}

// ParsePattern accepts "permissive" and "strict".
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("unknown anchor pattern %q", s)
	}
}

const bracketed = `\[(?i:error|warning|warn|critical|err|wrn|crit|ftl|fat|fatal)\]`

var anchors = map[Pattern]*regexp.Regexp{
	Permissive: regexp.MustCompile(
		`^\d{4}-\d{2}-\d{2}.*?\s(?:` + bracketed + `|(?:ERROR|WARN(?:ING)?|CRITICAL|FATAL)\b)`),
	Strict: regexp.MustCompile(
		`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?\s+` + bracketed),
}

// Matches reports whether line opens a new record under p.
func (p Pattern) Matches(line string) bool {
	return anchors[p].MatchString(line)
}

var (
	leadingDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	leadingStamp = regexp.MustCompile(
		`^\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:[.,]\d+)?)?)?(?: ?(?:Z|[+-]\d{2}:?\d{2}|UTC|GMT))?`)
	fallbackStamp = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2}:\d{2})`)
)

func startsWithDate(line string) bool {
	return leadingDate.MatchString(line)
}

var stampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp parses the timestamp leading line. Values without a zone
// are UTC. When the full token cannot be parsed, the bare
// YYYY-MM-DD HH:MM:SS prefix is used instead.
func ParseTimestamp(line string) (time.Time, bool) {
	tok := leadingStamp.FindString(line)
	if tok == "" {
		return time.Time{}, false
	}
	tok = strings.Replace(tok, " Z", "Z", 1)
	for _, z := range []string{" UTC", "UTC", " GMT", "GMT"} {
		if strings.HasSuffix(tok, z) {
			tok = strings.TrimSuffix(tok, z)
			break
		}
	}
	if i := strings.LastIndexAny(tok, "+-"); i > 10 && tok[i-1] == ' ' {
		tok = tok[:i-1] + tok[i:]
	}

	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, tok, time.UTC); err == nil {
			return t.UTC(), true
		}
	}

	if m := fallbackStamp.FindStringSubmatch(line); m != nil {
		if t, err := time.ParseInLocation(time.DateTime, m[1]+" "+m[2], time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
