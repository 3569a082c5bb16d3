// Package ledger implements the account and submission repositories on top of
// a single human-readable JSON document. Every write rewrites the document
// through a temp file and rename, so a crash leaves either the previous or
// the new version on disk.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/recipekeeper/internal/filex"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
)

const documentVersion = 1

// FileName is the ledger document name inside the data directory.
const FileName = "ledger.json"

type document struct {
	Version     int                       `json:"version"`
	LastSeq     int64                     `json:"last_seq"`
	Accounts    map[string]models.Account `json:"accounts"`
	Submissions []*models.Submission      `json:"submissions"`
}

func emptyDocument() *document {
	return &document{
		Version:     documentVersion,
		Accounts:    map[string]models.Account{},
		Submissions: []*models.Submission{},
	}
}

// Store guards one ledger file. Writers are serialized by the store's mutex.
type Store struct {
	path string
	mu   sync.RWMutex
}

// Open prepares the ledger at path, creating an empty document when none
// exists yet. An unreadable document is reported instead of being replaced.
func Open(path string) (*Store, error) {
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	s := &Store{path: path}
	_, ok, err := filex.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if !ok {
		if err := s.write(emptyDocument()); err != nil {
			return nil, err
		}
		return s, nil
	}

	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) Submissions() *SubmissionRepository {
	return &SubmissionRepository{store: s}
}

func (s *Store) load() (*document, error) {
	data, ok, err := filex.ReadFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if !ok {
		return emptyDocument(), nil
	}

	doc := emptyDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", s.path, err)
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("ledger %s has unsupported version %d", s.path, doc.Version)
	}
	if doc.Accounts == nil {
		doc.Accounts = map[string]models.Account{}
	}
	return doc, nil
}

func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (s *Store) view(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update loads the current document, lets fn change it and persists the
// result. Nothing is written when fn fails.
func (s *Store) update(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}
