package store

import "sync"

// MemStore is an in-memory Store. It backs tests and the device-side
// snapshot application in the sync reconciler's unit tests.
type MemStore struct {
	mu  sync.Mutex
	doc document
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) ListProfiles() ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.listProfiles(), nil
}

func (s *MemStore) GetProfile(title string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.getProfile(title)
}

func (s *MemStore) AddProfile(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.addProfile(p)
}

func (s *MemStore) UpdateProfile(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.updateProfile(p)
}

func (s *MemStore) RenameProfile(oldTitle, newTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.renameProfile(oldTitle, newTitle)
}

func (s *MemStore) DeleteProfile(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.deleteProfile(title)
}

func (s *MemStore) ListCommands() ([]Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.listCommands(), nil
}

func (s *MemStore) GetCommand(title string) (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.getCommand(title)
}

func (s *MemStore) AddCommand(c Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.addCommand(c)
}

func (s *MemStore) UpdateCommand(oldTitle string, c Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.updateCommand(oldTitle, c)
}

func (s *MemStore) ReorderCommands(order []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.reorderCommands(order)
}

func (s *MemStore) DeleteCommand(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.deleteCommand(title)
}

func (s *MemStore) ReplaceAll(profiles []Profile, commands []Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.replaceAll(profiles, commands)
	return nil
}
