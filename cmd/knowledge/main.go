package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"contratorealidad-backend/config"
	"contratorealidad-backend/logger"
	"contratorealidad-backend/rag"
	"contratorealidad-backend/storage"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(openStore).Execute(); err != nil {
		os.Exit(1)
	}
}

// storeOpener returns the knowledge base the subcommands operate on
type storeOpener func(ctx context.Context) (*rag.KnowledgeStore, error)

func openStore(ctx context.Context) (*rag.KnowledgeStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, err
	}
	st, err := storage.NewStorageFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	store := rag.NewKnowledgeStore(
		rag.KnowledgeWithStorage(st, cfg.Knowledge.KnowledgeKey),
		rag.KnowledgeWithLogger(log),
	)
	store.Load(ctx)
	return store, nil
}

func newRootCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "knowledge",
		Short:        "Manage the legal knowledge base used for keyword retrieval",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newSearchCmd(open),
		newAddCmd(open),
		newExportCmd(open),
		newImportCmd(open),
	)
	return cmd
}

func newSearchCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search snippets by content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			results := store.Search(args[0])
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				_, _ = fmt.Fprintln(out, "no results")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CATEGORY\tTYPE\tSOURCE\tCONTENT")
			for _, r := range results {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Category, r.Type, r.Source, r.Content)
			}
			return w.Flush()
		},
	}
}

func newAddCmd(open storeOpener) *cobra.Command {
	var category, docType, source string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a snippet and persist the base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			snippet, err := store.Add(cmd.Context(), category, docType, args[0], source)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added snippet to %s/%s on %s\n", category, docType, snippet.AddedDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Snippet category (required).")
	cmd.Flags().StringVar(&docType, "type", "", "Document type within the category (required).")
	cmd.Flags().StringVar(&source, "source", "", "Where the snippet comes from.")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newExportCmd(open storeOpener) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole base as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			data, err := store.Export()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file. Defaults to stdout.")
	return cmd
}

func newImportCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole base with a JSON file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			store, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Import(cmd.Context(), data); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories\n", len(store.Categories()))
			return nil
		},
	}
}
