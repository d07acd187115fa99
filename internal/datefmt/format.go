package datefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported date format")

// UnsupportedFormatError reports a date-format identifier outside the table.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported date format: %q", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// Pattern is a compiled matching rule for one supported date format.
type Pattern struct {
	id     string
	alias  string
	layout string
	re     *regexp.Regexp
}

// ID returns the canonical identifier (e.g. "YYYY-MM-DD").
func (p *Pattern) ID() string { return p.id }

// Strftime returns the strftime spelling accepted for the same format.
func (p *Pattern) Strftime() string { return p.alias }

// Regexp returns the validation pattern used to locate candidates.
func (p *Pattern) Regexp() *regexp.Regexp { return p.re }

// Layout returns the Go reference layout used for strict parsing.
func (p *Pattern) Layout() string { return p.layout }

var patterns = []*Pattern{
	{id: "YYYY-MM-DD", alias: "%Y-%m-%d", layout: "2006-01-02", re: regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)},
	{id: "YYYYMMDD", alias: "%Y%m%d", layout: "20060102", re: regexp.MustCompile(`\d{8}`)},
	{id: "MM-DD-YYYY", alias: "%m-%d-%Y", layout: "01-02-2006", re: regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)},
	{id: "DD_MM_YYYY", alias: "%d_%m_%Y", layout: "02_01_2006", re: regexp.MustCompile(`\d{2}_\d{2}_\d{4}`)},
}

var byID = func() map[string]*Pattern {
	m := make(map[string]*Pattern, len(patterns)*2)
	for _, p := range patterns {
		m[p.id] = p
		m[p.alias] = p
	}
	return m
}()

// Resolve returns the matching rule for a date-format identifier. Both the
// canonical spelling ("YYYYMMDD") and the strftime spelling ("%Y%m%d") are
// accepted.
func Resolve(id string) (*Pattern, error) {
	p, ok := byID[strings.TrimSpace(id)]
	if !ok {
		return nil, &UnsupportedFormatError{Format: id}
	}
	return p, nil
}

// Supported lists the canonical identifiers in table order.
func Supported() []string {
	ids := make([]string, 0, len(patterns))
	for _, p := range patterns {
		ids = append(ids, p.id)
	}
	return ids
}
