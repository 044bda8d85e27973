package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"contratorealidad-backend/intake"
	"contratorealidad-backend/service"

	"github.com/gin-gonic/gin"
)

// readUpload reads the multipart "file" field and the optional use_ocr flag.
// It writes the error response itself and reports false on failure.
func readUpload(c *gin.Context, maxBytes int64) (service.IntakeInput, bool) {
	if maxBytes > 0 {
		if c.Request.ContentLength > maxBytes {
			respondError(c, fmt.Errorf("%w: upload exceeds %d bytes", intake.ErrFileTooLarge, maxBytes))
			return service.IntakeInput{}, false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, fmt.Errorf("%w: upload exceeds %d bytes", intake.ErrFileTooLarge, maxBytes))
			return service.IntakeInput{}, false
		}
		respondBadRequest(c, "NO_FILE", "No file provided")
		return service.IntakeInput{}, false
	}

	f, err := header.Open()
	if err != nil {
		respondBadRequest(c, "FILE_READ_ERROR", "Failed to read file")
		return service.IntakeInput{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondBadRequest(c, "FILE_READ_ERROR", "Failed to read file")
		return service.IntakeInput{}, false
	}

	useOCR, _ := strconv.ParseBool(c.PostForm("use_ocr"))
	return service.IntakeInput{
		Data:     data,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		UseOCR:   useOCR,
	}, true
}
