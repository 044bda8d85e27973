package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"contratorealidad-backend/bootstrap"
	"contratorealidad-backend/config"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/models"
	"contratorealidad-backend/service"
	"contratorealidad-backend/storage"

	"github.com/spf13/cobra"
)

const defaultOutput = "patrones_demanda.json"

type extractOptions struct {
	Input   string
	Output  string
	UseOCR  bool
	Publish bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract-patterns <reference-lawsuit>",
		Short: "Extract per-section writing patterns from a reference lawsuit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", defaultOutput, "File the patterns are written to.")
	cmd.Flags().BoolVar(&opts.UseOCR, "ocr", false, "Read the document with Cloud Vision OCR.")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "Also publish the patterns to PATTERNS_KEY so new cases start with them.")
	return cmd
}

func run(ctx context.Context, opts extractOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	providers, err := bootstrap.NewProviders(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	defer providers.Close()

	wizardOpts := []service.WizardOption{service.WizardWithLogger(log)}
	if opts.UseOCR {
		ocr, err := bootstrap.NewOCR(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize OCR: %w", err)
		}
		defer ocr.Close()
		wizardOpts = append(wizardOpts, service.WizardWithOCR(ocr))
	}

	patternOpts := []service.PatternServiceOption{
		service.PatternsWithGenerator(providers.Generator),
		service.PatternsWithLogger(log),
	}
	if opts.Publish {
		st, err := storage.NewStorageFromEnv()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		patternOpts = append(patternOpts, service.PatternsWithStorage(st, cfg.Knowledge.PatternsKey))
	}

	_, err = extract(ctx, opts,
		service.NewCaseWizard(wizardOpts...),
		service.NewPatternService(patternOpts...),
		out,
	)
	return err
}

// extract reads the reference document, analyzes it and writes the result
func extract(ctx context.Context, opts extractOptions, wizard *service.CaseWizard, patterns *service.PatternService, out io.Writer) (models.ReferencePatterns, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, err
	}

	text, err := wizard.ExtractDocumentText(ctx, service.IntakeInput{
		Data:     data,
		Filename: filepath.Base(opts.Input),
		UseOCR:   opts.UseOCR,
	})
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(out, "extracted %d characters from %s\n", len([]rune(text)), opts.Input)

	result, err := patterns.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.Output, encoded, 0o644); err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(out, "wrote patterns for %d of %d sections to %s\n", len(result), models.SectionCount, opts.Output)

	if opts.Publish {
		if err := patterns.Publish(ctx, result); err != nil {
			return nil, err
		}
		_, _ = fmt.Fprintln(out, "published patterns")
	}
	return result, nil
}
