package datefmt

import (
	"path/filepath"
	"time"
)

// Extract searches the base name of fileName for the first substring that
// matches p and parses it strictly. The boolean is false when nothing matches
// or the match is not a real calendar date (month 13, February 30).
func Extract(fileName string, p *Pattern) (time.Time, bool) {
	if p == nil || fileName == "" {
		return time.Time{}, false
	}
	match := p.re.FindString(filepath.Base(fileName))
	if match == "" {
		return time.Time{}, false
	}
	return p.Parse(match)
}

// Extract is shorthand for Extract(fileName, p).
func (p *Pattern) Extract(fileName string) (time.Time, bool) {
	return Extract(fileName, p)
}

// Parse validates value against the format's layout. The returned time is
// midnight UTC.
func (p *Pattern) Parse(value string) (time.Time, bool) {
	if p == nil || !p.re.MatchString(value) || len(value) != len(p.layout) {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(p.layout, value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
