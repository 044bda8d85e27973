package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"contratorealidad-backend/logger"
	"contratorealidad-backend/models"
	"contratorealidad-backend/storage"
)

var (
	// ErrPersistence wraps failures reading or writing the persisted knowledge base
	ErrPersistence = errors.New("knowledge base persistence failed")
	// ErrInvalidKnowledge is returned for malformed snippets or imports
	ErrInvalidKnowledge = errors.New("invalid knowledge base input")
)

// KnowledgeStore holds the legal snippet knowledge base shared by all cases.
type KnowledgeStore struct {
	mu      sync.RWMutex
	kb      models.KnowledgeBase
	storage storage.Storage
	key     string
	log     *logger.Logger
	now     func() time.Time
}

// KnowledgeStoreOption is a functional option for KnowledgeStore
type KnowledgeStoreOption func(*KnowledgeStore)

// KnowledgeWithStorage persists the knowledge base under key
func KnowledgeWithStorage(st storage.Storage, key string) KnowledgeStoreOption {
	return func(s *KnowledgeStore) {
		s.storage = st
		s.key = key
	}
}

// KnowledgeWithLogger sets the logger
func KnowledgeWithLogger(log *logger.Logger) KnowledgeStoreOption {
	return func(s *KnowledgeStore) {
		s.log = log.With("service", "KnowledgeStore")
	}
}

// NewKnowledgeStore creates a store seeded with DefaultKnowledgeBase
func NewKnowledgeStore(opts ...KnowledgeStoreOption) *KnowledgeStore {
	s := &KnowledgeStore{
		kb:  DefaultKnowledgeBase(),
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory base with the persisted copy. A missing or
// unreadable copy keeps the seed and is only logged.
func (s *KnowledgeStore) Load(ctx context.Context) {
	if s.storage == nil {
		return
	}

	kb, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("no persisted knowledge base, using seed", "key", s.key)
		} else {
			s.log.Warn("failed to load knowledge base, using seed", "key", s.key, "error", err)
		}
		return
	}

	s.mu.Lock()
	s.kb = kb
	s.mu.Unlock()
	s.log.Info("knowledge base loaded", "key", s.key, "categories", len(kb))
}

func (s *KnowledgeStore) read(ctx context.Context) (models.KnowledgeBase, error) {
	rc, err := s.storage.Download(ctx, s.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return parseKnowledgeBase(data)
}

func parseKnowledgeBase(data []byte) (models.KnowledgeBase, error) {
	var kb models.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledge, err)
	}
	if kb == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidKnowledge)
	}
	for cat, types := range kb {
		if types == nil {
			kb[cat] = map[string]models.Snippets{}
		}
	}
	return kb, nil
}

// save writes the current base. Callers must hold at least the read lock.
func (s *KnowledgeStore) save(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	data, err := json.MarshalIndent(s.kb, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.storage.Put(ctx, s.key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Add appends a snippet and persists the base. On a persistence failure the
// snippet stays in memory and ErrPersistence is returned.
func (s *KnowledgeStore) Add(ctx context.Context, category, docType, content, source string) (models.Snippet, error) {
	category = strings.TrimSpace(category)
	docType = strings.TrimSpace(docType)
	content = strings.TrimSpace(content)
	if category == "" || docType == "" || content == "" {
		return models.Snippet{}, fmt.Errorf("%w: category, doc_type and content are required", ErrInvalidKnowledge)
	}

	snippet := models.Snippet{
		Content:   content,
		Source:    strings.TrimSpace(source),
		AddedDate: s.now().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kb[category] == nil {
		s.kb[category] = map[string]models.Snippets{}
	}
	s.kb[category][docType] = append(s.kb[category][docType], snippet)

	if err := s.save(ctx); err != nil {
		s.log.Error("failed to persist knowledge base", "error", err)
		return snippet, err
	}
	return snippet, nil
}

// Snippets returns a copy of the snippets under category/docType
func (s *KnowledgeStore) Snippets(category, docType string) models.Snippets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.Snippets(nil), s.kb[category][docType]...)
}

// Search returns every snippet whose content contains query, case-insensitive,
// ordered by category, then doc type, then insertion order.
func (s *KnowledgeStore) Search(query string) []models.KnowledgeSearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	results := []models.KnowledgeSearchResult{}
	if q == "" {
		return results
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cat := range sortedKeys(s.kb) {
		types := s.kb[cat]
		typeNames := make([]string, 0, len(types))
		for t := range types {
			typeNames = append(typeNames, t)
		}
		sort.Strings(typeNames)

		for _, t := range typeNames {
			for _, sn := range types[t] {
				if strings.Contains(strings.ToLower(sn.Content), q) {
					results = append(results, models.KnowledgeSearchResult{
						Category:  cat,
						Type:      t,
						Content:   sn.Content,
						Source:    sn.Source,
						AddedDate: sn.AddedDate,
					})
				}
			}
		}
	}
	return results
}

// Categories lists the category names in order
func (s *KnowledgeStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.kb)
}

// Export returns the base as indented JSON
func (s *KnowledgeStore) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.kb, "", "  ")
}

// Import replaces the whole base with data and persists it. Malformed input
// leaves the current base untouched.
func (s *KnowledgeStore) Import(ctx context.Context, data []byte) error {
	kb, err := parseKnowledgeBase(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = kb

	if err := s.save(ctx); err != nil {
		s.log.Error("failed to persist imported knowledge base", "error", err)
		return err
	}
	return nil
}

func sortedKeys(kb models.KnowledgeBase) []string {
	keys := make([]string, 0, len(kb))
	for k := range kb {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
