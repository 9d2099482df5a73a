package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
)

// BackupHandler handles snapshot export and restore endpoints.
type BackupHandler struct {
	backupService  *service.BackupService
	maxImportBytes int64
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backupService *service.BackupService, maxImportBytes int64) *BackupHandler {
	return &BackupHandler{
		backupService:  backupService,
		maxImportBytes: maxImportBytes,
	}
}

// Export godoc
// GET /api/v1/backup/export
// Streams a full database snapshot as a downloadable JSON document.
func (h *BackupHandler) Export(c *gin.Context) {
	snap, err := h.backupService.Export(c.Request.Context(), "manual export")
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// Import godoc
// POST /api/v1/backup/import
// Validates a snapshot document and replaces the entire database with it.
// On any failure existing data is left untouched.
func (h *BackupHandler) Import(c *gin.Context) {
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes)
	doc, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err := h.backupService.Import(c.Request.Context(), doc); err != nil {
		var verr *service.SnapshotValidationError
		if errors.As(err, &verr) {
			response.FailWithFields(c, http.StatusUnprocessableEntity, snapshotErrCode(verr), snapshotErrFields(verr))
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrRestoreFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "snapshot restored successfully"})
}

func snapshotErrCode(verr *service.SnapshotValidationError) response.ErrCode {
	switch verr.Code {
	case service.SnapshotMissingVersionInfo:
		return response.ErrMissingVersionInfo
	case service.SnapshotMissingCollection:
		return response.ErrMissingCollection
	default:
		return response.ErrMissingMetadata
	}
}

func snapshotErrFields(verr *service.SnapshotValidationError) map[string]string {
	if verr.Collection == "" {
		return nil
	}
	return map[string]string{"collection": verr.Collection}
}
