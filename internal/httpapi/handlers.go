package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ceartscore-platform/internal/audit"
	"ceartscore-platform/internal/auth"
	"ceartscore-platform/internal/scoring"
	"ceartscore-platform/internal/uploads"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Uploads uploads.Repository
	Filter  uploads.Filter
	Scoring *scoring.Service
	Audit   *audit.Service
	Log     *slog.Logger
}

func (h Handlers) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// workspaceID resolves the tenant for the request and aborts with 403 when
// it cannot. An authenticated session must carry the workspace claim; one
// that validated without it is rejected rather than pooled into a shared
// workspace with everyone else's documents. Only claims-less bypass
// sessions fall back to the fixed local workspace so the flow stays
// exercisable in non-enforcing environments.
func workspaceID(c *gin.Context) (string, bool) {
	claims, err := auth.ClaimsFrom(c.Request.Context())
	if err != nil {
		return "local", true
	}
	if claims.WorkspaceID == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Workspace not resolved",
			"message": "The session is not associated with a workspace.",
		})
		return "", false
	}
	return claims.WorkspaceID, true
}

func actorID(c *gin.Context) string {
	claims, err := auth.ClaimsFrom(c.Request.Context())
	if err != nil {
		return ""
	}
	return claims.Subject
}

// --- Files ---

// UploadFile accepts one multipart file, runs it through the safety
// filter, and persists sanitized metadata.
//
// The acknowledgment describes a freshly uploaded file and must never be
// cached or content-sniffed by intermediaries.
func (h Handlers) UploadFile(c *gin.Context) {
	if h.Uploads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "uploads not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "File is required",
			"message": "Send the document as multipart form field \"file\".",
		})
		return
	}

	wid, ok := workspaceID(c)
	if !ok {
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")

	if err := h.Filter.Validate(fileHeader.Size, contentType); err != nil {
		h.auditUpload(c, wid, "", false, err.Error())

		var typeErr *uploads.TypeError
		if errors.As(err, &typeErr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":        "File type not allowed",
				"message":      typeErr.Error(),
				"allowedTypes": typeErr.Allowed,
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"message": "The file does not meet the upload policy.",
		})
		return
	}

	doc := uploads.Document{
		ID:          uuid.NewString(),
		WorkspaceID: wid,
		FileName:    uploads.SanitizeFileName(fileHeader.Filename),
		FileSize:    fileHeader.Size,
		ContentType: contentType,
		Status:      uploads.StatusPending,
		UploadedBy:  actorID(c),
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.Uploads.Insert(c.Request.Context(), doc); err != nil {
		h.logger().Error("document insert failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Service error",
			"message": "Unable to store the document metadata.",
		})
		return
	}

	h.auditUpload(c, wid, doc.ID, true, doc.FileName)

	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, doc)
}

func (h Handlers) ListFiles(c *gin.Context) {
	if h.Uploads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "uploads not configured"})
		return
	}
	wid, ok := workspaceID(c)
	if !ok {
		return
	}
	docs, err := h.Uploads.ListByWorkspace(c.Request.Context(), wid)
	if err != nil {
		h.logger().Error("document list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Service error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": docs})
}

func (h Handlers) DeleteFile(c *gin.Context) {
	if h.Uploads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "uploads not configured"})
		return
	}
	id := c.Param("file_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file_id required"})
		return
	}
	wid, ok := workspaceID(c)
	if !ok {
		return
	}
	err := h.Uploads.Delete(c.Request.Context(), wid, id)
	if errors.Is(err, uploads.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		h.logger().Error("document delete failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Service error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

// --- Scoring ---

func (h Handlers) ProjectScore(c *gin.Context) {
	if h.Scoring == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "scoring not configured"})
		return
	}
	wid, ok := workspaceID(c)
	if !ok {
		return
	}
	score, err := h.Scoring.ProjectScore(c.Request.Context(), scoring.ScoreRequest{
		WorkspaceID: wid,
		ProjectID:   c.Param("project_id"),
	})
	if errors.Is(err, scoring.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Project not scored"})
		return
	}
	if errors.Is(err, scoring.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
		return
	}
	if err != nil {
		h.logger().Error("score lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Service error"})
		return
	}
	c.JSON(http.StatusOK, score)
}

// --- Session ---

// Me echoes the authenticated identity for dashboard bootstrapping.
func (h Handlers) Me(c *gin.Context) {
	claims, err := auth.ClaimsFrom(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       claims.Subject,
		"workspace_id":  claims.WorkspaceID,
	})
}

func (h Handlers) auditUpload(c *gin.Context, workspaceID, documentID string, accepted bool, message string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogUpload(c.Request.Context(), workspaceID, actorID(c), c.ClientIP(), documentID, accepted, message); err != nil {
		h.logger().Warn("audit append failed", "err", err)
	}
}
