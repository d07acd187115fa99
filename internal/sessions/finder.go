package sessions

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"sessionlocator/internal/config"
	"sessionlocator/internal/datefmt"
	"sessionlocator/internal/filecache"
	"sessionlocator/internal/logging"
)

// Lister supplies candidate paths. *filecache.Cache satisfies it.
type Lister interface {
	Get(ctx context.Context, dir, ext string, opts filecache.GetOptions) ([]string, error)
}

// Options tunes a lookup. Limit bounds the number of candidate files, not
// the number of dated results.
type Options struct {
	Limit        int
	ForceRefresh bool
}

// DatedFile is a file whose name carries a valid session date.
type DatedFile struct {
	Path string
	Date time.Time
}

// Session groups the files recorded on one date.
type Session struct {
	Date  time.Time
	Files []string
}

// Finder locates dated session files.
type Finder struct {
	files   Lister
	cfg     *config.Config
	logger  *slog.Logger
	resolve func(string) (*datefmt.Pattern, error)
}

// NewFinder builds a Finder. cfg may be nil when only FindDatedFiles is used.
func NewFinder(files Lister, cfg *config.Config, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Finder{
		files:   files,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "sessions"),
		resolve: datefmt.Resolve,
	}
}

// FindDatedFiles returns the files under dir ending in ext whose base name
// holds a valid date in formatID, in the order the cache returned them.
// Files without a date, or with an impossible one, are skipped.
func (f *Finder) FindDatedFiles(ctx context.Context, dir, ext, formatID string, opts Options) ([]DatedFile, error) {
	pattern, err := f.resolve(formatID)
	if err != nil {
		return nil, err
	}
	paths, err := f.files.Get(ctx, dir, ext, filecache.GetOptions{Limit: opts.Limit, ForceRefresh: opts.ForceRefresh})
	if err != nil {
		return nil, err
	}

	out := make([]DatedFile, 0, len(paths))
	skipped := 0
	for _, path := range paths {
		date, ok := pattern.Extract(path)
		if !ok {
			skipped++
			continue
		}
		out = append(out, DatedFile{Path: path, Date: date})
	}
	f.logger.Debug("dated files located",
		logging.String("dir", dir),
		logging.String("extension", ext),
		logging.String("date_format", pattern.ID()),
		logging.Int("candidates", len(paths)),
		logging.Int("dated", len(out)),
		logging.Int("skipped", skipped))
	return out, nil
}

// FindByExtension runs FindDatedFiles against the directory and date format
// the configuration assigns to ext.
func (f *Finder) FindByExtension(ctx context.Context, ext string, opts Options) ([]DatedFile, error) {
	dir, formatID, err := f.lookup(ext)
	if err != nil {
		return nil, err
	}
	return f.FindDatedFiles(ctx, dir, ext, formatID, opts)
}

// FindSubjectSessions returns the dated files for the subject with the given
// code. A file belongs to the subject when its base name contains the
// subject's name, compared case-insensitively.
func (f *Finder) FindSubjectSessions(ctx context.Context, subjectCode, ext string, opts Options) ([]DatedFile, error) {
	if f.cfg == nil {
		return nil, errors.New("sessions: finder has no configuration")
	}
	name, err := f.cfg.SubjectName(subjectCode)
	if err != nil {
		return nil, err
	}
	files, err := f.FindByExtension(ctx, ext, opts)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(name)
	out := files[:0]
	for _, file := range files {
		if strings.Contains(fold.String(filepath.Base(file.Path)), needle) {
			out = append(out, file)
		}
	}
	return out, nil
}

// SessionDates groups the subject's files by date, oldest first.
func (f *Finder) SessionDates(ctx context.Context, subjectCode, ext string, opts Options) ([]Session, error) {
	files, err := f.FindSubjectSessions(ctx, subjectCode, ext, opts)
	if err != nil {
		return nil, err
	}
	return GroupByDate(files), nil
}

func (f *Finder) lookup(ext string) (string, string, error) {
	if f.cfg == nil {
		return "", "", errors.New("sessions: finder has no configuration")
	}
	dir, err := f.cfg.DirectoryForExtension(ext)
	if err != nil {
		return "", "", err
	}
	formatID, err := f.cfg.DateFormat()
	if err != nil {
		return "", "", err
	}
	return dir, formatID, nil
}

// GroupByDate collapses files into one Session per distinct date, sorted by
// date. Files keep their input order within a session.
func GroupByDate(files []DatedFile) []Session {
	index := make(map[string]int)
	var sessions []Session
	for _, file := range files {
		day := file.Date.Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			i = len(sessions)
			index[day] = i
			sessions = append(sessions, Session{Date: file.Date})
		}
		sessions[i].Files = append(sessions[i].Files, file.Path)
	}
	sort.SliceStable(sessions, func(a, b int) bool {
		return sessions[a].Date.Before(sessions[b].Date)
	})
	return sessions
}
