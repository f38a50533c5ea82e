package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/lock"
)

const (
	profilesFile = "profiles.json"
	commandsFile = "commands.json"
)

// FileStore persists profiles and commands as JSON files in a data
// directory. Writes replace the whole file via temp-file + rename, so a
// crash mid-write never leaves a partial document behind. A process-level
// mutex serializes writers within a process; an advisory directory lock
// serializes mutations across processes (a running agent and a CLI
// invocation share the same files).
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't create data directory "+dir,
			"Check directory permissions.")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory backing this store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) ListProfiles() ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.listProfiles(), nil
}

func (s *FileStore) GetProfile(title string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return Profile{}, err
	}
	return doc.getProfile(title)
}

func (s *FileStore) AddProfile(p Profile) error {
	return s.mutate(func(doc *document) error { return doc.addProfile(p) })
}

func (s *FileStore) UpdateProfile(p Profile) error {
	return s.mutate(func(doc *document) error { return doc.updateProfile(p) })
}

func (s *FileStore) RenameProfile(oldTitle, newTitle string) error {
	return s.mutate(func(doc *document) error { return doc.renameProfile(oldTitle, newTitle) })
}

func (s *FileStore) DeleteProfile(title string) error {
	return s.mutate(func(doc *document) error { return doc.deleteProfile(title) })
}

func (s *FileStore) ListCommands() ([]Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.listCommands(), nil
}

func (s *FileStore) GetCommand(title string) (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return Command{}, err
	}
	return doc.getCommand(title)
}

func (s *FileStore) AddCommand(c Command) error {
	return s.mutate(func(doc *document) error { return doc.addCommand(c) })
}

func (s *FileStore) UpdateCommand(oldTitle string, c Command) error {
	return s.mutate(func(doc *document) error { return doc.updateCommand(oldTitle, c) })
}

func (s *FileStore) ReorderCommands(order []int) error {
	return s.mutate(func(doc *document) error { return doc.reorderCommands(order) })
}

func (s *FileStore) DeleteCommand(title string) error {
	return s.mutate(func(doc *document) error { return doc.deleteCommand(title) })
}

func (s *FileStore) ReplaceAll(profiles []Profile, commands []Command) error {
	return s.mutate(func(doc *document) error {
		doc.replaceAll(profiles, commands)
		return nil
	})
}

// mutate loads the document, applies fn, and saves only if fn succeeded.
// A failed mutation leaves the files untouched (no partial write). The
// directory lock spans load-through-save so concurrent processes never
// interleave a read-modify-write.
func (s *FileStore) mutate(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := lock.Acquire(s.dir, lock.DefaultTimeout, lock.DefaultStale)
	if err != nil {
		return err
	}
	defer l.Release()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *FileStore) load() (*document, error) {
	doc := &document{}

	if err := readJSON(filepath.Join(s.dir, profilesFile), &doc.Profiles); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(s.dir, commandsFile), &doc.Commands); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) save(doc *document) error {
	if err := writeJSON(filepath.Join(s.dir, profilesFile), doc.Profiles); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, commandsFile), doc.Commands)
}

// readJSON unmarshals path into v. A missing file is an empty collection,
// not an error (first run).
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't read "+filepath.Base(path),
			"Check file permissions in the data directory.")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			filepath.Base(path)+" is not valid JSON",
			"Fix or remove the file, then try again.")
	}
	return nil
}

// writeJSON writes v to path atomically: marshal, write to a temp file in
// the same directory, then rename over the target.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't encode "+filepath.Base(path), "")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't create temp file for "+filepath.Base(path),
			"Check directory permissions.")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't write "+filepath.Base(path),
			"Check free disk space.")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't flush "+filepath.Base(path), "")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't replace "+filepath.Base(path),
			"Check directory permissions.")
	}
	return nil
}
