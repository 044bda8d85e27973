package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"contratorealidad-backend/models"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrCaseExists   = errors.New("case already exists")
)

// CaseStore keeps wizard cases between requests, keyed by case id
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	Get(ctx context.Context, id uuid.UUID) (*models.Case, error)
	Save(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryCaseStore is a process-local CaseStore. Cases are stored as JSON so
// callers never share mutable state with the store.
type MemoryCaseStore struct {
	mu    sync.RWMutex
	cases map[uuid.UUID][]byte
}

// NewMemoryCaseStore creates an empty in-memory store
func NewMemoryCaseStore() *MemoryCaseStore {
	return &MemoryCaseStore{cases: make(map[uuid.UUID][]byte)}
}

func (s *MemoryCaseStore) Create(ctx context.Context, c *models.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; ok {
		return ErrCaseExists
	}
	s.cases[c.ID] = data
	return nil
}

func (s *MemoryCaseStore) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	s.mu.RLock()
	data, ok := s.cases[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCaseNotFound
	}
	return decodeCase(data)
}

func (s *MemoryCaseStore) Save(ctx context.Context, c *models.Case) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return ErrCaseNotFound
	}
	s.cases[c.ID] = data
	return nil
}

func (s *MemoryCaseStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[id]; !ok {
		return ErrCaseNotFound
	}
	delete(s.cases, id)
	return nil
}

func decodeCase(data []byte) (*models.Case, error) {
	c := &models.Case{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if len(c.Sections) == 0 {
		c.Sections = models.NewSections()
	}
	return c, nil
}
