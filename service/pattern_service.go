package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/metrics"
	"contratorealidad-backend/models"
	"contratorealidad-backend/prompt"
	"contratorealidad-backend/storage"
)

// ErrNoPatterns is returned when an analysis yields no usable section
var ErrNoPatterns = errors.New("no section patterns found in document")

// PatternService loads, analyzes and publishes reference-lawsuit writing patterns.
type PatternService struct {
	mu        sync.RWMutex
	patterns  models.ReferencePatterns
	storage   storage.Storage
	key       string
	generator llm.Generator
	log       *logger.Logger
}

// PatternServiceOption is a functional option for PatternService
type PatternServiceOption func(*PatternService)

// PatternsWithStorage reads and publishes the patterns JSON under key
func PatternsWithStorage(st storage.Storage, key string) PatternServiceOption {
	return func(s *PatternService) {
		s.storage = st
		s.key = key
	}
}

func PatternsWithGenerator(g llm.Generator) PatternServiceOption {
	return func(s *PatternService) {
		s.generator = g
	}
}

func PatternsWithLogger(log *logger.Logger) PatternServiceOption {
	return func(s *PatternService) {
		s.log = log
	}
}

func NewPatternService(opts ...PatternServiceOption) *PatternService {
	s := &PatternService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "PatternService")
	return s
}

// Load reads the published patterns. A missing or malformed document leaves
// the service with no patterns and is only logged.
func (s *PatternService) Load(ctx context.Context) models.ReferencePatterns {
	if s.storage == nil || s.key == "" {
		return nil
	}

	patterns, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("No reference patterns published", "key", s.key)
		} else {
			s.log.Warn("Failed to load reference patterns", "key", s.key, "error", err)
		}
		patterns = nil
	} else {
		s.log.Info("Reference patterns loaded", "key", s.key, "sections", len(patterns))
	}

	s.mu.Lock()
	s.patterns = patterns
	s.mu.Unlock()
	return patterns.Copy()
}

func (s *PatternService) read(ctx context.Context) (models.ReferencePatterns, error) {
	rc, err := s.storage.Download(ctx, s.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var patterns models.ReferencePatterns
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("malformed patterns document: %w", err)
	}
	return filterSections(patterns), nil
}

// Patterns returns a copy of the loaded patterns. Empty when none are published.
func (s *PatternService) Patterns() models.ReferencePatterns {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patterns.Copy()
}

// Analyze asks the LLM for the per-section writing patterns of a reference lawsuit.
func (s *PatternService) Analyze(ctx context.Context, documentText string) (models.ReferencePatterns, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, validationError("document", "reference document has no text")
	}
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", llm.ErrGeneration)
	}

	p := prompt.PatternAnalysis(documentText)
	reply, err := s.generator.Generate(ctx, llm.Request{
		System:      p.System,
		Prompt:      p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err == nil {
		var patterns models.ReferencePatterns
		patterns, err = ParsePatterns(reply)
		metrics.ObserveGeneration("patterns", string(p.Path), err)
		if err != nil {
			s.log.Warn("Pattern analysis returned unusable output", "error", err)
			return nil, err
		}
		s.log.Info("Reference patterns extracted", "sections", len(patterns))
		return patterns, nil
	}

	metrics.ObserveGeneration("patterns", string(p.Path), err)
	if !errors.Is(err, llm.ErrGeneration) {
		err = fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}
	return nil, err
}

// Publish stores patterns under the configured key and makes them the
// patterns new cases start with.
func (s *PatternService) Publish(ctx context.Context, patterns models.ReferencePatterns) error {
	if s.storage == nil || s.key == "" {
		return errors.New("pattern storage not configured")
	}
	data, err := json.MarshalIndent(patterns, "", "  ")
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, s.key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to publish patterns: %w", err)
	}

	s.mu.Lock()
	s.patterns = patterns.Copy()
	s.mu.Unlock()
	return nil
}

// ParsePatterns decodes an LLM reply, stripping a surrounding code fence and
// keeping only the twelve section titles.
func ParsePatterns(reply string) (models.ReferencePatterns, error) {
	body := stripCodeFence(reply)

	var patterns models.ReferencePatterns
	if err := json.Unmarshal([]byte(body), &patterns); err != nil {
		return nil, fmt.Errorf("%w: could not parse patterns: %v", llm.ErrGeneration, err)
	}
	patterns = filterSections(patterns)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %w", llm.ErrGeneration, ErrNoPatterns)
	}
	return patterns, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func filterSections(patterns models.ReferencePatterns) models.ReferencePatterns {
	if len(patterns) == 0 {
		return nil
	}
	out := make(models.ReferencePatterns, len(patterns))
	for title, p := range patterns {
		if models.IsSectionTitle(title) {
			out[title] = p
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
