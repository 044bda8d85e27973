// Package bootstrap builds the provider clients and stores selected by config.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"contratorealidad-backend/config"
	"contratorealidad-backend/intake"
	"contratorealidad-backend/llm"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sashabaranov/go-openai"
)

// Providers holds the clients built from config. Close releases every one of them.
type Providers struct {
	Generator   llm.Generator
	Embedder    llm.Embedder
	Transcriber intake.Transcriber
	OCR         intake.OCR

	gemini  *genai.Client
	openai  *openai.Client
	closers []io.Closer
}

func (p *Providers) geminiClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if p.gemini == nil {
		client, err := llm.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		p.gemini = client
		p.closers = append(p.closers, client)
	}
	return p.gemini, nil
}

func (p *Providers) openAIClient(cfg *config.Config) (*openai.Client, error) {
	if p.openai == nil {
		client, err := llm.NewOpenAIClient(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		p.openai = client
	}
	return p.openai, nil
}

// NewProviders builds the generator, embedder, transcriber and OCR client.
// Intake providers are optional: a failure there is logged and the provider left nil.
func NewProviders(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Providers, error) {
	p := &Providers{}

	switch cfg.LLM.Provider {
	case "openai":
		client, err := p.openAIClient(cfg)
		if err != nil {
			return nil, err
		}
		p.Generator = llm.NewOpenAIGenerator(client, cfg.LLM.OpenAIModel)
	default:
		client, err := p.geminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.Generator = llm.NewGeminiGenerator(client, cfg.LLM.GeminiModel, log)
	}
	log.Info("Generator initialized", "provider", cfg.LLM.Provider)

	switch cfg.EmbeddingProvider() {
	case "openai":
		client, err := p.openAIClient(cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.Embedder = llm.NewOpenAIEmbedder(client, cfg.LLM.OpenAIEmbeddingModel)
	default:
		client, err := p.geminiClient(ctx, cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.Embedder = llm.NewGeminiEmbedder(client, cfg.LLM.GeminiEmbeddingModel)
	}

	switch cfg.Intake.TranscriptionProvider {
	case "gcp":
		t, err := intake.NewSpeechTranscriber(ctx, cfg.Intake.GoogleCredentials, cfg.Intake.LanguageCode)
		if err != nil {
			log.Warn("Speech-to-Text unavailable, transcription disabled", "error", err)
		} else {
			p.Transcriber = t
			p.closers = append(p.closers, t)
		}
	default:
		if cfg.LLM.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set, transcription disabled")
			break
		}
		client, err := p.openAIClient(cfg)
		if err != nil {
			log.Warn("Whisper unavailable, transcription disabled", "error", err)
			break
		}
		p.Transcriber = intake.NewWhisperTranscriber(client, cfg.Intake.LanguageCode)
	}

	if cfg.Intake.OCRProvider == "gcp" {
		o, err := NewOCR(ctx, cfg)
		if err != nil {
			log.Warn("Vision OCR unavailable", "error", err)
		} else {
			p.OCR = o
			p.closers = append(p.closers, o)
		}
	}

	return p, nil
}

// NewOCR creates the Vision OCR client from config
func NewOCR(ctx context.Context, cfg *config.Config) (*intake.VisionOCR, error) {
	return intake.NewVisionOCR(ctx, cfg.Intake.GoogleCredentials)
}

func (p *Providers) Close() {
	for _, c := range p.closers {
		_ = c.Close()
	}
	p.closers = nil
}

// Stores is the persistence selected by SESSION_STORE
type Stores struct {
	Cases    repository.CaseStore
	Files    repository.IntakeFileStore
	Attempts repository.AttemptStore

	pool  *pgxpool.Pool
	close func() error
}

// NewStores connects the case store. File and attempt records go to Postgres
// whenever DATABASE_URL is set and stay in memory otherwise.
func NewStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	s := &Stores{
		Files:    repository.NewMemoryIntakeFileStore(),
		Attempts: repository.NewMemoryAttemptStore(),
	}

	if cfg.Session.DatabaseURL != "" {
		pool, err := NewPostgres(ctx, cfg.Session.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.Files = repository.NewIntakeFileRepository(pool)
		s.Attempts = repository.NewGenerationAttemptRepository(pool)
		log.Info("Postgres connection established")
	}

	switch cfg.Session.Store {
	case "redis":
		rdb, err := repository.NewRedisClient(ctx, cfg.Session.RedisAddr)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.close = rdb.Close
		s.Cases = repository.NewRedisCaseStore(rdb, cfg.Session.TTL)
	case "postgres":
		if s.pool == nil {
			return nil, fmt.Errorf("session store postgres requires DATABASE_URL")
		}
		s.Cases = repository.NewCaseRepository(s.pool)
	default:
		s.Cases = repository.NewMemoryCaseStore()
	}
	log.Info("Case store initialized", "store", cfg.Session.Store)
	return s, nil
}

func (s *Stores) Close() {
	if s.close != nil {
		_ = s.close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// NewPostgres opens a pool and checks the connection
func NewPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
