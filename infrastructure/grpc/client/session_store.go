package client

import (
	stderrors "errors"
	"fmt"
	"groupchat/codec"
	"groupchat/domain"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
)

// SessionStore keeps the session between two runs of the client.
type SessionStore interface {
	// Load returns nil when no session was saved.
	Load() (*domain.Session, error)
	Save(session domain.Session) error
	Clear() error
}

// FileSessionStore writes the session row as JSON in a file only the user can read.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (f *FileSessionStore) Load() (*domain.Session, error) {
	data, err := os.ReadFile(f.path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var row codec.Row
	if err := protojson.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("corrupted session file %s: %w", f.path, err)
	}
	session, err := codec.RowToSession(&row)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (f *FileSessionStore) Save(session domain.Session) error {
	data, err := protojson.MarshalOptions{Indent: "  "}.Marshal(codec.SessionToRow(session))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileSessionStore) Clear() error {
	err := os.Remove(f.path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemorySessionStore forgets the session when the process exits.
type MemorySessionStore struct {
	session *domain.Session
}

func (m *MemorySessionStore) Load() (*domain.Session, error) {
	return m.session, nil
}

func (m *MemorySessionStore) Save(session domain.Session) error {
	m.session = &session
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.session = nil
	return nil
}
