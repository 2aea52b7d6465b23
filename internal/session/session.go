// Package session manages per-upload working directories and the workbooks
// produced from them.
package session

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Naming of the managed entries
const (
	SessionPrefix   = "session_"
	OutputPrefix    = "extracted_data_"
	OutputExt       = ".xlsx"
	timestampLayout = "20060102_150405"
)

var (
	// ErrNoOutput is returned by Latest before any workbook was recorded
	ErrNoOutput = errors.New("no processed data available")
	// ErrNotPDF rejects uploads without a .pdf name
	ErrNotPDF = errors.New("only PDF files are accepted")

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Session is one upload's working directory
type Session struct {
	ID        string
	Dir       string
	Output    string
	CreatedAt time.Time
}

// CleanupReport lists what Cleanup removed
type CleanupReport struct {
	Sessions []string `json:"sessions"`
	Outputs  []string `json:"outputs"`
}

// Store owns the upload and output directories
type Store struct {
	uploadDir string
	outputDir string
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex
	latest string
}

// NewStore creates both directories if needed
func NewStore(uploadDir, outputDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{uploadDir, outputDir} {
		if dir == "" {
			return nil, fmt.Errorf("directory cannot be empty")
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Store{uploadDir: uploadDir, outputDir: outputDir, now: time.Now, logger: logger}, nil
}

// Create makes a fresh session directory. Names start with the creation
// time so that lexical order is chronological; a short random suffix keeps
// two uploads in the same second apart.
func (s *Store) Create() (*Session, error) {
	created := s.now()
	stamp := created.Format(timestampLayout)
	id := stamp + "_" + uuid.NewString()[:8]

	dir := filepath.Join(s.uploadDir, SessionPrefix+id)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s.logger.Info("session.created", "dir", dir)
	return &Session{
		ID:        id,
		Dir:       dir,
		Output:    filepath.Join(s.outputDir, OutputPrefix+id+OutputExt),
		CreatedAt: created,
	}, nil
}

// maxNameCollisions bounds the numeric suffixes tried by SaveUpload
const maxNameCollisions = 1000

// SaveUpload copies r into the session under a sanitized form of name and
// returns the stored path. Names that collide with an earlier upload get
// a numeric suffix (report_1.pdf, report_2.pdf, ...).
func (s *Store) SaveUpload(sess *Session, name string, r io.Reader) (string, error) {
	clean := SanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(clean), ".pdf") {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, name)
	}

	path, f, err := createUnique(sess.Dir, clean)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", clean, err)
	}
	clean = filepath.Base(path)

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", clean, err)
	}
	if n == 0 {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to save file: %s is empty", clean)
	}

	s.logger.Debug("session.saved", "path", path, "bytes", n)
	return path, nil
}

// createUnique opens a new file for name in dir, never replacing one that
// already exists
func createUnique(dir, name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameCollisions; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("too many uploads named %s", name)
}

// SetLatest records the workbook served by Latest
func (s *Store) SetLatest(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = path
}

// Latest returns the most recent workbook if it still exists on disk
func (s *Store) Latest() (string, error) {
	s.mu.Lock()
	path := s.latest
	s.mu.Unlock()

	if path == "" {
		return "", ErrNoOutput
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, path)
	}
	return path, nil
}

// Cleanup keeps the newest keep sessions and workbooks and removes the rest
func (s *Store) Cleanup(keep int) (*CleanupReport, error) {
	if keep < 0 {
		keep = 0
	}
	report := &CleanupReport{Sessions: []string{}, Outputs: []string{}}

	sessions, err := listPrefixed(s.uploadDir, SessionPrefix, true)
	if err != nil {
		return nil, err
	}
	for _, name := range excess(sessions, keep) {
		if err := os.RemoveAll(filepath.Join(s.uploadDir, name)); err != nil {
			return report, fmt.Errorf("failed to remove session %s: %w", name, err)
		}
		report.Sessions = append(report.Sessions, name)
		s.logger.Info("session.removed", "name", name)
	}

	outputs, err := listPrefixed(s.outputDir, OutputPrefix, false)
	if err != nil {
		return report, err
	}
	for _, name := range excess(outputs, keep) {
		if err := os.Remove(filepath.Join(s.outputDir, name)); err != nil {
			return report, fmt.Errorf("failed to remove output %s: %w", name, err)
		}
		report.Outputs = append(report.Outputs, name)
		s.logger.Info("session.output_removed", "name", name)
	}

	return report, nil
}

func listPrefixed(dir, prefix string, wantDir bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() == wantDir && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// excess returns the oldest names beyond the newest keep
func excess(sorted []string, keep int) []string {
	if len(sorted) <= keep {
		return nil
	}
	return sorted[:len(sorted)-keep]
}

// SanitizeFilename reduces name to a safe base name made of ASCII letters,
// digits, dots, dashes and underscores
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
