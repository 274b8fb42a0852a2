package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aendu/latin-events/internal/event"
)

const (
	// FeedFile is the name of the combined feed in both directories.
	FeedFile = "events.csv"
	// CalendarFile is the iCalendar rendering of the feed, public only.
	CalendarFile = "events.ics"
)

// ErrEmptyFeed is returned when asked to publish zero events.
var ErrEmptyFeed = errors.New("refusing to publish an empty feed")

// Snapshot file names kept compatible with the earlier crawler output.
var snapshotFiles = map[string]string{
	"latino.ch":       "events_latino_ch.csv",
	"bachata-bern.ch": "events-bachata-bern.csv",
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Store writes the combined feed to the data directory and mirrors it to
// the public directory. Directories are only created when something is
// written.
type Store struct {
	dataDir   string
	publicDir string
}

// New creates a Store. A leading "~/" in either directory is expanded.
func New(dataDir, publicDir string) (*Store, error) {
	var err error
	if dataDir, err = expandHome(dataDir); err != nil {
		return nil, err
	}
	if publicDir, err = expandHome(publicDir); err != nil {
		return nil, err
	}
	if dataDir == "" || publicDir == "" {
		return nil, errors.New("data and public directories are required")
	}
	return &Store{dataDir: dataDir, publicDir: publicDir}, nil
}

func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}

// FeedPath is the canonical feed location.
func (s *Store) FeedPath() string {
	return filepath.Join(s.dataDir, FeedFile)
}

// MirrorPath is the publicly served copy of the feed.
func (s *Store) MirrorPath() string {
	return filepath.Join(s.publicDir, FeedFile)
}

// CalendarPath is the publicly served calendar.
func (s *Store) CalendarPath() string {
	return filepath.Join(s.publicDir, CalendarFile)
}

// PublicDir is the directory served to readers.
func (s *Store) PublicDir() string {
	return s.publicDir
}

// SnapshotPath returns the per-source snapshot file for source.
func (s *Store) SnapshotPath(source string) string {
	name, ok := snapshotFiles[source]
	if !ok {
		slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(source), "_"), "_")
		if slug == "" {
			slug = "unknown"
		}
		name = "events_" + slug + ".csv"
	}
	return filepath.Join(s.dataDir, name)
}

// Publish encodes events once and writes the bytes to the canonical path,
// then to the mirror. Each write replaces its file atomically. A mirror
// failure after a successful canonical write is returned, leaving the two
// files out of step until the next run.
func (s *Store) Publish(events []*event.Event) error {
	if len(events) == 0 {
		return ErrEmptyFeed
	}

	data, err := EncodeFeed(events)
	if err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}

	canonical := s.FeedPath()
	if err := writeFileAtomic(canonical, data); err != nil {
		return fmt.Errorf("publishing %s: %w", canonical, err)
	}

	mirror := s.MirrorPath()
	if err := writeFileAtomic(mirror, data); err != nil {
		return fmt.Errorf("publishing mirror %s (canonical %s already updated): %w", mirror, canonical, err)
	}
	return nil
}

// WriteCalendar replaces the public calendar file.
func (s *Store) WriteCalendar(data []byte) error {
	path := s.CalendarPath()
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteSnapshot stores the records of one source.
func (s *Store) WriteSnapshot(source string, events []*event.Event) error {
	data, err := EncodeFeed(events)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	path := s.SnapshotPath(source)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads the records last stored for source. A source without
// a snapshot yields no events.
func (s *Store) LoadSnapshot(source string) ([]*event.Event, error) {
	return ReadEvents(s.SnapshotPath(source))
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
