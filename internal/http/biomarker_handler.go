package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medrec-llm/internal/service"
)

// BiomarkerHandler expone biomarcadores, tendencias y carga manual.
type BiomarkerHandler struct {
	logger     *zap.Logger
	trendServ  *service.TrendService
	accessServ *service.AccessService
}

func NewBiomarkerHandler(logger *zap.Logger, trendServ *service.TrendService, accessServ *service.AccessService) *BiomarkerHandler {
	return &BiomarkerHandler{
		logger:     logger,
		trendServ:  trendServ,
		accessServ: accessServ,
	}
}

// ListTypes maneja GET /biomarkers.
func (h *BiomarkerHandler) ListTypes(c *gin.Context) {
	requesterID, patientID, ok := patientScope(c)
	if !ok {
		return
	}
	if !h.authorize(c, requesterID, patientID) {
		return
	}

	types, err := h.trendServ.TrackedTypes(c.Request.Context(), patientID)
	if err != nil {
		h.logger.Error("list biomarker types failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list biomarkers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"biomarkers": types})
}

// GetTrend maneja GET /biomarkers/:type/trend.
func (h *BiomarkerHandler) GetTrend(c *gin.Context) {
	requesterID, patientID, ok := patientScope(c)
	if !ok {
		return
	}
	if !h.authorize(c, requesterID, patientID) {
		return
	}

	biomarkerType := strings.TrimSpace(c.Param("type"))
	if biomarkerType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing biomarker type"})
		return
	}

	trend, err := h.trendServ.Trend(c.Request.Context(), patientID, biomarkerType)
	if err != nil {
		h.logger.Error("trend failed", zap.Error(err), zap.String("type", biomarkerType))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute trend"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

// CreateObservation maneja POST /observations.
func (h *BiomarkerHandler) CreateObservation(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Type       string     `json:"type" binding:"required"`
		Value      *float64   `json:"value" binding:"required"`
		Unit       string     `json:"unit"`
		RecordedAt *time.Time `json:"recorded_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid observation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	input := service.ObservationInput{
		Type:  strings.TrimSpace(req.Type),
		Value: *req.Value,
		Unit:  strings.TrimSpace(req.Unit),
	}
	if req.RecordedAt != nil {
		input.RecordedAt = *req.RecordedAt
	}

	obs, err := h.trendServ.RecordObservation(c.Request.Context(), claims.UserID, input)
	if err != nil {
		h.logger.Error("record observation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record observation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"observation": obs})
}

func (h *BiomarkerHandler) authorize(c *gin.Context, requesterID, patientID string) bool {
	err := h.accessServ.Authorize(c.Request.Context(), requesterID, patientID)
	if err == nil {
		return true
	}
	if errors.Is(err, service.ErrAccessDenied) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return false
	}
	h.logger.Error("access check failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check access"})
	return false
}
