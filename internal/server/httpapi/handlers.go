package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/api"
	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/server/services"
)

// Handler exposes the sync protocol over HTTP/JSON.
type Handler struct {
	users   *services.UserService
	records *services.RecordService
	content *services.ContentService
}

func NewHandler(us *services.UserService, rs *services.RecordService, cs *services.ContentService) *Handler {
	return &Handler{users: us, records: rs, content: cs}
}

func (h *Handler) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid json body"})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid json body"})
		return
	}

	token, userID, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.LoginResponse{AccessToken: token, OwnerId: userID})
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) upsertRecord(c *gin.Context) {
	userID := UserIDFromContext(c)

	var rec api.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid json body"})
		return
	}
	if strings.TrimSpace(rec.Id) == "" || strings.TrimSpace(rec.Kind) == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "id and kind are required"})
		return
	}

	version, err := h.records.Upsert(c.Request.Context(), userID, rec.Id, rec.Kind, rec.Payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.UpsertResponse{Id: rec.Id, Kind: rec.Kind, Version: version})
}

func (h *Handler) pullRecords(c *gin.Context) {
	userID := UserIDFromContext(c)

	kind := strings.TrimSpace(c.Query("kind"))
	if kind == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "kind is required"})
		return
	}
	sinceVersion, _ := strconv.ParseInt(c.Query("since_version"), 10, 64)

	recs, latest, err := h.records.SelectUpdated(c.Request.Context(), userID, kind, sinceVersion)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := api.PullResponse{LatestVersion: latest, Records: make([]api.Record, 0, len(recs))}
	for _, rec := range recs {
		resp.Records = append(resp.Records, api.Record{
			Id:      rec.ID,
			Kind:    rec.Kind,
			Payload: rec.Payload,
			Version: rec.Version,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteRecord(c *gin.Context) {
	userID := UserIDFromContext(c)

	kind := strings.TrimSpace(c.Query("kind"))
	if kind == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "kind is required"})
		return
	}

	if err := h.records.Delete(c.Request.Context(), userID, kind, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) contentURL(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "key is required"})
		return
	}

	url, err := h.content.GetPresignedGetUrl(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ContentURLResponse{Key: key, URL: url})
}

// writeError maps service errors to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrVersionConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrAlreadyExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}
