package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contratorealidad-backend/rag"
	"contratorealidad-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, open storeOpener, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKnowledgeCommands(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	open := func(ctx context.Context) (*rag.KnowledgeStore, error) {
		s := rag.NewKnowledgeStore(rag.KnowledgeWithStorage(st, "knowledge/legal_knowledge_base.json"))
		s.Load(ctx)
		return s, nil
	}

	out, err := runCmd(t, open, "", "add", "--category", "casos_propios", "--type", "sentencias", "--source", "CSJ", "SL1234 de 2023 sobre subordinación")
	require.NoError(t, err)
	assert.Contains(t, out, "added snippet to casos_propios/sentencias")

	out, err = runCmd(t, open, "", "search", "sl1234")
	require.NoError(t, err)
	assert.Contains(t, out, "casos_propios")
	assert.Contains(t, out, "CSJ")

	exported := filepath.Join(dir, "export.json")
	_, err = runCmd(t, open, "", "export", "-o", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SL1234")

	out, err = runCmd(t, open, `{"solo":{"tipo":["uno"]}}`, "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 categories")

	out, err = runCmd(t, open, "", "search", "sl1234")
	require.NoError(t, err)
	assert.Contains(t, out, "no results")

	_, err = runCmd(t, open, "not json", "import", "-")
	assert.ErrorIs(t, err, rag.ErrInvalidKnowledge)
}

func TestAddRequiresCategory(t *testing.T) {
	open := func(ctx context.Context) (*rag.KnowledgeStore, error) {
		return rag.NewKnowledgeStore(), nil
	}
	_, err := runCmd(t, open, "", "add", "--type", "x", "contenido")
	assert.Error(t, err)
}
