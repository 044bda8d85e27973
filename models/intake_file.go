package models

import (
	"time"

	"github.com/google/uuid"
)

// IntakeFileKind is the role an uploaded file plays in a case
type IntakeFileKind string

const (
	IntakeFileAudio     IntakeFileKind = "audio"
	IntakeFileCaseFile  IntakeFileKind = "case_file"
	IntakeFileReference IntakeFileKind = "reference"
)

// IntakeFile represents an uploaded file attached to a case
type IntakeFile struct {
	ID          uuid.UUID      `json:"id"`
	CaseID      uuid.UUID      `json:"case_id"`
	Kind        IntakeFileKind `json:"kind"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	Size        int64          `json:"size"`
	StoragePath string         `json:"storage_path"`
	CreatedAt   time.Time      `json:"created_at"`
}
