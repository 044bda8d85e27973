package service

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"contratorealidad-backend/intake"
	"contratorealidad-backend/llm"
	"contratorealidad-backend/rag"
)

var sectionPattern = regexp.MustCompile(`Redacta SOLO la sección "([^"]+)"`)

// fakeGenerator answers every prompt and remembers the requests it saw
type fakeGenerator struct {
	mu       sync.Mutex
	requests []llm.Request
	fail     bool
	reply    func(req llm.Request) string
}

func (g *fakeGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.fail {
		return "", errors.New("provider unavailable")
	}
	if g.reply != nil {
		return g.reply(req), nil
	}
	if m := sectionPattern.FindStringSubmatch(req.Prompt); m != nil {
		return "Contenido de " + m[1], nil
	}
	return "texto generado", nil
}

func (g *fakeGenerator) calls() []llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]llm.Request(nil), g.requests...)
}

// countTokens counts requests made with the given max token budget
func (g *fakeGenerator) countTokens(n int) int {
	count := 0
	for _, r := range g.calls() {
		if r.MaxTokens == n {
			count++
		}
	}
	return count
}

type fakeRetriever struct {
	mu    sync.Mutex
	calls int
	docs  []rag.Document
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query, caseContext string) []rag.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.docs
}

func (r *fakeRetriever) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (intake.Transcript, error) {
	if t.err != nil {
		return intake.Transcript{}, t.err
	}
	return intake.Transcript{Text: t.text, Model: "whisper-1"}, nil
}

type fakeOCR struct {
	text  string
	calls int
}

func (o *fakeOCR) ExtractTextOCR(ctx context.Context, data []byte, mimeType string) (string, error) {
	o.calls++
	return o.text, nil
}
