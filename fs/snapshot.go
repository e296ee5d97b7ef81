package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/unfold"
)

// Ensure SnapshotStore implements unfold.SnapshotStore at compile time.
var _ unfold.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore implements unfold.SnapshotStore with atomic update semantics.
// Snapshots are saved to a temporary directory, then moved atomically on
// Commit. Save is safe for concurrent use.
type SnapshotStore struct {
	baseDir string
	name    string
	now     func() time.Time

	mu    sync.Mutex
	saved map[string]string // path -> URL, since the last Commit or Abort
}

// NewSnapshotStore creates a new SnapshotStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewSnapshotStore(baseDir, name string) *SnapshotStore {
	return &SnapshotStore{
		baseDir: baseDir,
		name:    name,
		now:     time.Now,
		saved:   make(map[string]string),
	}
}

func (s *SnapshotStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *SnapshotStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes the HTML captured from url to the temporary directory.
// Saving a URL again replaces its snapshot. A different URL that maps to
// the same file is rejected with ECONFLICT.
func (s *SnapshotStore) Save(ctx context.Context, url string, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := URLToPath(url)
	if err != nil {
		return err
	}
	if err := s.claim(relPath, url); err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(FormatSnapshot(url, html, s.now())), 0644)
}

func (s *SnapshotStore) claim(relPath, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.saved[relPath]; ok && prev != url {
		return unfold.Errorf(unfold.ECONFLICT, "%s and %s share snapshot %s", prev, url, relPath)
	}
	s.saved[relPath] = url
	return nil
}

func (s *SnapshotStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.saved)
}

// FormatSnapshot prefixes html with a comment recording its source and
// capture time.
func FormatSnapshot(url, html string, captured time.Time) string {
	var b strings.Builder
	b.WriteString("<!-- source: ")
	b.WriteString(strings.ReplaceAll(url, "--", "%2D%2D"))
	b.WriteString(" captured: ")
	b.WriteString(captured.UTC().Format(time.RFC3339))
	b.WriteString(" -->\n")
	b.WriteString(html)
	return b.String()
}

// Commit replaces the final directory with everything saved so far.
// Committing without any saved snapshot leaves an empty directory.
func (s *SnapshotStore) Commit() error {
	defer s.reset()
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved since the last Commit.
func (s *SnapshotStore) Abort() error {
	defer s.reset()
	return os.RemoveAll(s.tempDir())
}
