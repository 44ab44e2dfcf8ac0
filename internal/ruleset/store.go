package ruleset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/zxg-sec/blfilter/internal/errors"
)

// Store reads and writes a Set as one rule per line.
//
// Saving overwrites the whole file. There is no locking and no atomic
// rename; concurrent writers are not supported.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a Store for path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the store file is present.
func (s *Store) Exists() bool {
	ok, err := afero.Exists(s.fs, s.path)
	return err == nil && ok
}

// Load reads the store. A missing file yields an empty Set. Lines are
// trimmed and blank lines skipped; duplicates are kept as found.
func (s *Store) Load() (*Set, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.NewStoreError("load", s.path, errors.Join(errors.ErrStoreRead, err))
	}

	var rules []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rules = append(rules, line)
		}
	}

	return New(rules...), nil
}

// Save overwrites the store with set's rules joined by newlines. The parent
// directory is created when missing.
func (s *Store) Save(set *Set) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return errors.NewStoreError("save", s.path, errors.Join(errors.ErrStoreWrite, err))
		}
	}

	content := strings.Join(set.rules, "\n")
	if err := afero.WriteFile(s.fs, s.path, []byte(content), 0644); err != nil {
		return errors.NewStoreError("save", s.path, errors.Join(errors.ErrStoreWrite, err))
	}
	return nil
}
