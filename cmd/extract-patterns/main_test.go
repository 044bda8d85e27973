package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contratorealidad-backend/llm"
	"contratorealidad-backend/service"
	"contratorealidad-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patternsReply = "```json\n" + `{"I. Hechos":{"estructura":"numerada","estilo":"formal","elementos":["fechas"],"formulas_legales":["BAJO LA GRAVEDAD DEL JURAMENTO"],"ejemplo_extracto":"PRIMERO: ..."},"Anexos":{}}` + "\n```"

func TestExtractWritesAndPublishesPatterns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	input := filepath.Join(dir, "referencia.txt")
	require.NoError(t, os.WriteFile(input, []byte(strings.Repeat("HECHOS. PRIMERO: la demandante laboró. ", 10)), 0o644))

	st, err := storage.NewLocalStorage(filepath.Join(dir, "store"))
	require.NoError(t, err)

	gen := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return patternsReply, nil
	})
	patterns := service.NewPatternService(
		service.PatternsWithGenerator(gen),
		service.PatternsWithStorage(st, "patterns/patrones_demanda.json"),
	)

	var out bytes.Buffer
	opts := extractOptions{Input: input, Output: filepath.Join(dir, "out.json"), Publish: true}
	result, err := extract(ctx, opts, service.NewCaseWizard(), patterns, &out)
	require.NoError(t, err)

	require.Len(t, result, 1, "unknown titles are dropped")
	assert.Equal(t, "numerada", result["I. Hechos"].Estructura)

	written, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Contains(t, string(written), "BAJO LA GRAVEDAD DEL JURAMENTO")

	reloaded := service.NewPatternService(service.PatternsWithStorage(st, "patterns/patrones_demanda.json"))
	assert.Equal(t, result, reloaded.Load(ctx))
	assert.Contains(t, out.String(), "published patterns")
}

func TestExtractRejectsShortDocument(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corta.txt")
	require.NoError(t, os.WriteFile(input, []byte("demasiado corto"), 0o644))

	gen := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		t.Fatal("generator must not be called")
		return "", nil
	})

	_, err := extract(context.Background(),
		extractOptions{Input: input, Output: filepath.Join(dir, "out.json")},
		service.NewCaseWizard(),
		service.NewPatternService(service.PatternsWithGenerator(gen)),
		&bytes.Buffer{},
	)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "out.json"))
	assert.True(t, os.IsNotExist(statErr))
}
