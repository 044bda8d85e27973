package handlers

import (
	"io"
	"net/http"
	"strings"

	"contratorealidad-backend/rag"

	"github.com/gin-gonic/gin"
)

const knowledgeExportFilename = "legal_knowledge_base.json"

// KnowledgeHandler manages the legal knowledge base used for keyword retrieval
type KnowledgeHandler struct {
	store *rag.KnowledgeStore
}

func NewKnowledgeHandler(store *rag.KnowledgeStore) *KnowledgeHandler {
	return &KnowledgeHandler{store: store}
}

type addSnippetRequest struct {
	Category string `json:"category"`
	DocType  string `json:"doc_type"`
	Content  string `json:"content"`
	Source   string `json:"source"`
}

// Search handles GET /api/knowledge/search?q=
func (h *KnowledgeHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondBadRequest(c, "MISSING_QUERY", "Query parameter q is required")
		return
	}
	respondOK(c, http.StatusOK, h.store.Search(q))
}

// Add handles POST /api/knowledge
func (h *KnowledgeHandler) Add(c *gin.Context) {
	var req addSnippetRequest
	if !bindJSON(c, &req) {
		return
	}
	snippet, err := h.store.Add(c.Request.Context(), req.Category, req.DocType, req.Content, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, snippet)
}

// Export handles GET /api/knowledge/export
func (h *KnowledgeHandler) Export(c *gin.Context) {
	data, err := h.store.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	sendDocument(c, knowledgeExportFilename, "application/json", data)
}

// Import handles POST /api/knowledge/import. The body replaces the whole base.
func (h *KnowledgeHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "INVALID_REQUEST", "Failed to read request body")
		return
	}
	if err := h.store.Import(c.Request.Context(), data); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"categories": h.store.Categories()})
}
