package handlers

import (
	"errors"
	"net/http"

	"contratorealidad-backend/export"
	"contratorealidad-backend/models"
	"contratorealidad-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseHandler exposes the case wizard over HTTP
type CaseHandler struct {
	cases          *service.CaseService
	maxUploadBytes int64
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(cases *service.CaseService, maxUploadBytes int64) *CaseHandler {
	return &CaseHandler{
		cases:          cases,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateCaseRequest is the body of POST /api/cases
type CreateCaseRequest struct {
	RetrievalMode models.RetrievalMode `json:"retrieval_mode"`
	LawyerName    string               `json:"lawyer_name"`
}

type selectIntakeRequest struct {
	Method models.IntakeMethod `json:"method" binding:"required"`
}

type factsRequest struct {
	Facts string `json:"facts"`
}

type lawyerRequest struct {
	LawyerName string `json:"lawyer_name"`
}

type powerOfAttorneyRequest struct {
	Fields models.PowerOfAttorneyFields `json:"fields"`
}

type reviseRequest struct {
	Feedback string `json:"feedback"`
}

// bindJSON decodes the request body and answers 400 when it is malformed
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	created, err := h.cases.CreateCase(c.Request.Context(), service.CreateCaseRequest{
		RetrievalMode: req.RetrievalMode,
		LawyerName:    req.LawyerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	got, err := h.cases.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, got)
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.cases.DeleteCase(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// caseAction adapts a single case transition to a handler
func (h *CaseHandler) caseAction(fn func(c *gin.Context, id uuid.UUID) (*models.Case, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		updated, err := fn(c, id)
		if errors.Is(err, errHandled) {
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, updated)
	}
}

// SelectIntake handles POST /api/cases/:id/intake/select
func (h *CaseHandler) SelectIntake(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		var req selectIntakeRequest
		if !bindJSON(c, &req) {
			return nil, errHandled
		}
		return h.cases.SelectIntake(c.Request.Context(), id, req.Method)
	})(c)
}

// ProcessIntake handles POST /api/cases/:id/intake
func (h *CaseHandler) ProcessIntake(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		in, ok := readUpload(c, h.maxUploadBytes)
		if !ok {
			return nil, errHandled
		}
		return h.cases.ProcessIntake(c.Request.Context(), id, in)
	})(c)
}

// CancelIntake handles POST /api/cases/:id/intake/cancel
func (h *CaseHandler) CancelIntake(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		return h.cases.CancelIntake(c.Request.Context(), id)
	})(c)
}

// SetFacts handles PUT /api/cases/:id/facts
func (h *CaseHandler) SetFacts(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		var req factsRequest
		if !bindJSON(c, &req) {
			return nil, errHandled
		}
		return h.cases.SetFacts(c.Request.Context(), id, req.Facts)
	})(c)
}

// GenerateSummary handles POST /api/cases/:id/summary
func (h *CaseHandler) GenerateSummary(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		return h.cases.GenerateSummary(c.Request.Context(), id)
	})(c)
}

// GenerateViability handles POST /api/cases/:id/viability
func (h *CaseHandler) GenerateViability(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		return h.cases.GenerateViability(c.Request.Context(), id)
	})(c)
}

// Advance handles POST /api/cases/:id/advance. An unmet precondition is
// answered with the unchanged case next to the error.
func (h *CaseHandler) Advance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	res, err := h.cases.Advance(ctx, id)
	if errors.Is(err, service.ErrInputValidation) {
		current, getErr := h.cases.GetCase(ctx, id)
		if getErr != nil {
			respondError(c, getErr)
			return
		}
		info := classify(err)
		c.JSON(info.status, gin.H{
			"success": false,
			"data":    gin.H{"case": current},
			"error":   errorBody(err, info),
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondWithWarning(c, res.Case, res.Warning)
}

// Back handles POST /api/cases/:id/back
func (h *CaseHandler) Back(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		return h.cases.Back(c.Request.Context(), id)
	})(c)
}

// SetLawyerName handles PUT /api/cases/:id/lawyer
func (h *CaseHandler) SetLawyerName(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		var req lawyerRequest
		if !bindJSON(c, &req) {
			return nil, errHandled
		}
		return h.cases.SetLawyerName(c.Request.Context(), id, req.LawyerName)
	})(c)
}

// SetPowerOfAttorney handles PUT /api/cases/:id/power-of-attorney
func (h *CaseHandler) SetPowerOfAttorney(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		var req powerOfAttorneyRequest
		if !bindJSON(c, &req) {
			return nil, errHandled
		}
		return h.cases.SetPowerOfAttorney(c.Request.Context(), id, req.Fields)
	})(c)
}

// DraftSection handles POST /api/cases/:id/sections/draft
func (h *CaseHandler) DraftSection(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		return h.cases.DraftSection(c.Request.Context(), id)
	})(c)
}

// AcceptSection handles POST /api/cases/:id/sections/accept
func (h *CaseHandler) AcceptSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.cases.AcceptSection(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondWithWarning(c, res.Case, res.Warning)
}

// ReviseSection handles POST /api/cases/:id/sections/revise
func (h *CaseHandler) ReviseSection(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		var req reviseRequest
		if !bindJSON(c, &req) {
			return nil, errHandled
		}
		return h.cases.ReviseSection(c.Request.Context(), id, req.Feedback)
	})(c)
}

// AnalyzeReferenceDocument handles POST /api/cases/:id/reference-document
func (h *CaseHandler) AnalyzeReferenceDocument(c *gin.Context) {
	h.caseAction(func(c *gin.Context, id uuid.UUID) (*models.Case, error) {
		in, ok := readUpload(c, h.maxUploadBytes)
		if !ok {
			return nil, errHandled
		}
		return h.cases.AnalyzeReferenceDocument(c.Request.Context(), id, in)
	})(c)
}

// ListAttempts handles GET /api/cases/:id/attempts
func (h *CaseHandler) ListAttempts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	attempts, err := h.cases.ListAttempts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, attempts)
}

// exportAction adapts a DOCX export to a download handler
func (h *CaseHandler) exportAction(fn func(c *gin.Context, id uuid.UUID) (*service.Export, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		doc, err := fn(c, id)
		if err != nil {
			respondError(c, err)
			return
		}
		sendDocument(c, doc.Filename, export.ContentType, doc.Data)
	}
}

// ExportLawsuit handles GET /api/cases/:id/export/lawsuit
func (h *CaseHandler) ExportLawsuit(c *gin.Context) {
	h.exportAction(func(c *gin.Context, id uuid.UUID) (*service.Export, error) {
		return h.cases.ExportLawsuit(c.Request.Context(), id)
	})(c)
}

// ExportViability handles GET /api/cases/:id/export/viability
func (h *CaseHandler) ExportViability(c *gin.Context) {
	h.exportAction(func(c *gin.Context, id uuid.UUID) (*service.Export, error) {
		return h.cases.ExportViability(c.Request.Context(), id)
	})(c)
}

// ExportPowerOfAttorney handles GET /api/cases/:id/export/power-of-attorney
func (h *CaseHandler) ExportPowerOfAttorney(c *gin.Context) {
	h.exportAction(func(c *gin.Context, id uuid.UUID) (*service.Export, error) {
		return h.cases.ExportPowerOfAttorney(c.Request.Context(), id)
	})(c)
}

// ExportTranscription handles GET /api/cases/:id/export/transcription
func (h *CaseHandler) ExportTranscription(c *gin.Context) {
	h.exportAction(func(c *gin.Context, id uuid.UUID) (*service.Export, error) {
		return h.cases.ExportTranscription(c.Request.Context(), id)
	})(c)
}
