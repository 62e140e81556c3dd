package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/service"
)

// ReportHandler expone los endpoints de estudios medicos.
type ReportHandler struct {
	logger     *zap.Logger
	reportServ *service.ReportService
	accessServ *service.AccessService
}

func NewReportHandler(logger *zap.Logger, reportServ *service.ReportService, accessServ *service.AccessService) *ReportHandler {
	return &ReportHandler{
		logger:     logger,
		reportServ: reportServ,
		accessServ: accessServ,
	}
}

// CreateReport maneja POST /reports.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Category string `json:"category" binding:"required"`
		Findings string `json:"findings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create report request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, observations, err := h.reportServ.IngestReport(c.Request.Context(), claims.UserID, domain.ReportCategory(req.Category), req.Findings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		case errors.Is(err, service.ErrEmptyFindings):
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty findings"})
			return
		default:
			h.logger.Error("ingest report failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process report"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"report": report, "observations": observations})
}

// ListReports maneja GET /reports.
func (h *ReportHandler) ListReports(c *gin.Context) {
	requesterID, patientID, ok := patientScope(c)
	if !ok {
		return
	}
	if err := h.authorize(c, requesterID, patientID); err != nil {
		return
	}

	reports, err := h.reportServ.ListReports(c.Request.Context(), patientID)
	if err != nil {
		h.logger.Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// GetReport maneja GET /reports/:id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	report, err := h.reportServ.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		h.logger.Error("get report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get report"})
		return
	}

	if err := h.authorize(c, claims.UserID, report.PatientID); err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// authorize responde 403 y devuelve error si el requester no puede leer los
// datos del paciente.
func (h *ReportHandler) authorize(c *gin.Context, requesterID, patientID string) error {
	err := h.accessServ.Authorize(c.Request.Context(), requesterID, patientID)
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrAccessDenied) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return err
	}
	h.logger.Error("access check failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check access"})
	return err
}
