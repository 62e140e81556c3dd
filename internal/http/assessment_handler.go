package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/service"
)

// AssessmentHandler expone el perfil clinico y las evaluaciones de riesgo.
type AssessmentHandler struct {
	logger         *zap.Logger
	assessmentServ *service.AssessmentService
}

func NewAssessmentHandler(logger *zap.Logger, assessmentServ *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		logger:         logger,
		assessmentServ: assessmentServ,
	}
}

// UpdateProfile maneja PUT /profile.
func (h *AssessmentHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		BirthYear           *int     `json:"birth_year"`
		Sex                 string   `json:"sex"`
		HeightCm            *float64 `json:"height_cm"`
		WeightKg            *float64 `json:"weight_kg"`
		WaistCm             *float64 `json:"waist_cm"`
		Smoking             string   `json:"smoking"`
		Diabetic            *bool    `json:"diabetic"`
		HypertensionTreated *bool    `json:"hypertension_treated"`
		FamilyHistoryCVD    *bool    `json:"family_history_cvd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.assessmentServ.UpdateProfile(c.Request.Context(), domain.PatientProfile{
		UserID:              claims.UserID,
		BirthYear:           req.BirthYear,
		Sex:                 domain.BiologicalSex(req.Sex),
		HeightCm:            req.HeightCm,
		WeightKg:            req.WeightKg,
		WaistCm:             req.WaistCm,
		Smoking:             domain.SmokingStatus(req.Smoking),
		Diabetic:            req.Diabetic,
		HypertensionTreated: req.HypertensionTreated,
		FamilyHistoryCVD:    req.FamilyHistoryCVD,
	})
	if err != nil {
		h.logger.Error("update profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetProfile maneja GET /profile.
func (h *AssessmentHandler) GetProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	profile, err := h.assessmentServ.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Evaluate maneja POST /assessments.
func (h *AssessmentHandler) Evaluate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	summary, err := h.assessmentServ.Evaluate(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("evaluate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate risk"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Latest maneja GET /assessments/latest.
func (h *AssessmentHandler) Latest(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	assessments, err := h.assessmentServ.Latest(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("latest assessments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list assessments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}
