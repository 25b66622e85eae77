package store

import "sync"

// ModalStore tracks which modal is open and the props passed to it. Pure UI
// state: one modal at a time, opening a new one replaces the current one
// outright, closing always clears type and props together.
type ModalStore struct {
	mu    sync.RWMutex
	open  bool
	typ   string
	props map[string]any
}

// NewModalStore is the constructor for ModalStore.
func NewModalStore() *ModalStore {
	return &ModalStore{}
}

// Open opens the named modal with the given props, replacing any modal that
// is already open.
func (s *ModalStore) Open(modalType string, props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.typ = modalType
	s.props = props
}

// Close clears the open modal and its props.
func (s *ModalStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.typ = ""
	s.props = nil
}

// IsOpen reports whether a modal is open.
func (s *ModalStore) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.open
}

// Type returns the open modal's type, or "" when closed.
func (s *ModalStore) Type() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.typ
}

// Props returns the props bag passed when the modal was opened.
func (s *ModalStore) Props() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.props
}
