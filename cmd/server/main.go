package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contratorealidad-backend/bootstrap"
	"contratorealidad-backend/config"
	"contratorealidad-backend/handlers"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/rag"
	"contratorealidad-backend/service"
	"contratorealidad-backend/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize storage
	fileStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		appLog.Fatal("Failed to initialize storage", "error", err)
	}
	appLog.Info("Storage initialized")

	stores, err := bootstrap.NewStores(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize case store", "store", cfg.Session.Store, "error", err)
	}
	defer stores.Close()

	providers, err := bootstrap.NewProviders(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize LLM providers", "provider", cfg.LLM.Provider, "error", err)
	}
	defer providers.Close()

	// Knowledge base and published patterns
	knowledge := rag.NewKnowledgeStore(
		rag.KnowledgeWithStorage(fileStorage, cfg.Knowledge.KnowledgeKey),
		rag.KnowledgeWithLogger(appLog),
	)
	knowledge.Load(ctx)

	patterns := service.NewPatternService(
		service.PatternsWithStorage(fileStorage, cfg.Knowledge.PatternsKey),
		service.PatternsWithGenerator(providers.Generator),
		service.PatternsWithLogger(appLog),
	)
	patterns.Load(ctx)

	vector := rag.NewVectorRetriever(
		providers.Embedder,
		rag.VectorWithCache(rag.NewEmbeddingCache()),
		rag.VectorWithLogger(appLog),
	)

	wizardOpts := []service.WizardOption{
		service.WizardWithGenerator(providers.Generator),
		service.WizardWithKeywordRetriever(rag.NewKeywordRetriever(knowledge)),
		service.WizardWithVectorRetriever(vector),
		service.WizardWithAttemptRecorder(stores.Attempts),
		service.WizardWithLogger(appLog),
	}
	if providers.Transcriber != nil {
		wizardOpts = append(wizardOpts, service.WizardWithTranscriber(providers.Transcriber))
	}
	if providers.OCR != nil {
		wizardOpts = append(wizardOpts, service.WizardWithOCR(providers.OCR))
	}

	cases := service.NewCaseService(
		service.CaseWithStore(stores.Cases),
		service.CaseWithWizard(service.NewCaseWizard(wizardOpts...)),
		service.CaseWithPatternService(patterns),
		service.CaseWithStorage(fileStorage),
		service.CaseWithIntakeFileStore(stores.Files),
		service.CaseWithAttemptStore(stores.Attempts),
		service.CaseWithLogger(appLog),
	)

	r := handlers.NewRouter(handlers.RouterConfig{
		Cases:          cases,
		Knowledge:      knowledge,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         appLog,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		appLog.Info("Server starting", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}
}
