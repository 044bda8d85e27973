package handlers

import (
	"fmt"
	"net/http"

	"contratorealidad-backend/service"

	"github.com/gin-gonic/gin"
)

// FileHandler serves uploaded intake files back to the client
type FileHandler struct {
	cases *service.CaseService
}

// NewFileHandler creates a new file handler
func NewFileHandler(cases *service.CaseService) *FileHandler {
	return &FileHandler{cases: cases}
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, rc, err := h.cases.GetFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=\"%s\"", file.Filename),
	}
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, rc, extraHeaders)
}
