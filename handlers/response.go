package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"contratorealidad-backend/intake"
	"contratorealidad-backend/llm"
	"contratorealidad-backend/rag"
	"contratorealidad-backend/repository"
	"contratorealidad-backend/service"
	"contratorealidad-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// errHandled marks a failure whose response has already been written
var errHandled = errors.New("response already written")

type errorInfo struct {
	status int
	code   string
	hint   string
}

// classify maps a service error to its HTTP status, error code and hint
func classify(err error) errorInfo {
	var verr *service.ValidationError
	var terr *service.TransitionError

	switch {
	case errors.As(err, &verr):
		return errorInfo{http.StatusUnprocessableEntity, "VALIDATION_ERROR", "check field " + verr.Field}
	case errors.As(err, &terr):
		return errorInfo{http.StatusConflict, "INVALID_TRANSITION", "current phase: " + terr.Phase}
	case errors.Is(err, service.ErrInvalidTransition):
		return errorInfo{http.StatusConflict, "INVALID_TRANSITION", ""}

	case errors.Is(err, intake.ErrTranscription) && errors.Is(err, intake.ErrFileTooLarge):
		return errorInfo{http.StatusUnprocessableEntity, "FILE_TOO_LARGE", fmt.Sprintf("max %d MB", intake.MaxAudioBytes>>20)}
	case errors.Is(err, intake.ErrFileTooLarge):
		return errorInfo{http.StatusUnprocessableEntity, "FILE_TOO_LARGE", ""}
	case errors.Is(err, intake.ErrTranscription) && errors.Is(err, intake.ErrUnsupportedFormat):
		return errorInfo{http.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT", "supported formats: " + strings.Join(intake.SupportedAudioFormats, ", ")}
	case errors.Is(err, intake.ErrTranscription):
		return errorInfo{http.StatusUnprocessableEntity, "TRANSCRIPTION_FAILED", "check the audio file and retry"}
	case errors.Is(err, intake.ErrUnsupportedFormat):
		return errorInfo{http.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT", "upload a PDF or plain text file, or an image with use_ocr=true"}
	case errors.Is(err, intake.ErrInsufficientText):
		return errorInfo{http.StatusUnprocessableEntity, "INSUFFICIENT_TEXT", "retry with use_ocr=true"}
	case errors.Is(err, intake.ErrExtraction):
		return errorInfo{http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "retry with use_ocr=true"}

	case errors.Is(err, llm.ErrGeneration):
		return errorInfo{http.StatusBadGateway, "GENERATION_FAILED", "retry the action"}

	case errors.Is(err, repository.ErrCaseNotFound):
		return errorInfo{http.StatusNotFound, "NOT_FOUND", "case not found or expired"}
	case errors.Is(err, repository.ErrFileNotFound), errors.Is(err, storage.ErrNotFound):
		return errorInfo{http.StatusNotFound, "NOT_FOUND", ""}

	case errors.Is(err, rag.ErrInvalidKnowledge):
		return errorInfo{http.StatusUnprocessableEntity, "INVALID_KNOWLEDGE", ""}
	case errors.Is(err, rag.ErrPersistence):
		return errorInfo{http.StatusInternalServerError, "PERSISTENCE_FAILED", "the change is kept in memory until restart"}
	}
	return errorInfo{http.StatusInternalServerError, "INTERNAL_ERROR", ""}
}

func errorBody(err error, info errorInfo) gin.H {
	body := gin.H{
		"code":    info.code,
		"message": err.Error(),
	}
	if info.hint != "" {
		body["hint"] = info.hint
	}
	return body
}

func respondError(c *gin.Context, err error) {
	info := classify(err)
	c.JSON(info.status, gin.H{
		"success": false,
		"error":   errorBody(err, info),
	})
}

// respondBadRequest reports a malformed request the service never saw
func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondWithWarning returns a successful result together with a non-fatal error
func respondWithWarning(c *gin.Context, data interface{}, warning error) {
	if warning == nil {
		respondOK(c, http.StatusOK, data)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"warning": errorBody(warning, classify(warning)),
	})
}

// parseID reads a uuid path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "INVALID_ID", fmt.Sprintf("Invalid %s format", name))
		return uuid.Nil, false
	}
	return id, true
}

func sendDocument(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, data)
}
