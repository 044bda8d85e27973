package handlers

import (
	"net/http"

	"contratorealidad-backend/export"
	"contratorealidad-backend/models"
	"contratorealidad-backend/service"

	"github.com/gin-gonic/gin"
)

// PowerOfAttorneyHandler renders power-of-attorney documents outside of a case
type PowerOfAttorneyHandler struct{}

func NewPowerOfAttorneyHandler() *PowerOfAttorneyHandler {
	return &PowerOfAttorneyHandler{}
}

// Fields handles GET /api/power-of-attorney/fields
func (h *PowerOfAttorneyHandler) Fields(c *gin.Context) {
	respondOK(c, http.StatusOK, models.PowerOfAttorneyFieldDefs)
}

// Render handles POST /api/power-of-attorney/render
func (h *PowerOfAttorneyHandler) Render(c *gin.Context) {
	var req powerOfAttorneyRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	doc, err := service.RenderPowerOfAttorneyExport(req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}
	sendDocument(c, doc.Filename, export.ContentType, doc.Data)
}
