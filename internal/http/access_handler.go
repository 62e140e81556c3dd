package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medrec-llm/internal/service"
)

// AccessHandler expone los permisos de lectura que un paciente da a medicos.
type AccessHandler struct {
	logger     *zap.Logger
	accessServ *service.AccessService
}

func NewAccessHandler(logger *zap.Logger, accessServ *service.AccessService) *AccessHandler {
	return &AccessHandler{
		logger:     logger,
		accessServ: accessServ,
	}
}

// Grant maneja POST /access/grants.
func (h *AccessHandler) Grant(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		DoctorID string `json:"doctor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid grant request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	grant, err := h.accessServ.Grant(c.Request.Context(), claims.UserID, strings.TrimSpace(req.DoctorID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfGrant):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot grant access to yourself"})
			return
		case errors.Is(err, service.ErrDoctorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
			return
		case errors.Is(err, service.ErrNotADoctor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "grantee is not a doctor"})
			return
		default:
			h.logger.Error("grant failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not grant access"})
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"grant": grant})
}

// Revoke maneja DELETE /access/grants/:doctor_id.
func (h *AccessHandler) Revoke(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	doctorID := strings.TrimSpace(c.Param("doctor_id"))
	if doctorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing doctor id"})
		return
	}

	if err := h.accessServ.Revoke(c.Request.Context(), claims.UserID, doctorID); err != nil {
		if errors.Is(err, service.ErrGrantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "access grant not found"})
			return
		}
		h.logger.Error("revoke failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not revoke access"})
		return
	}
	c.Status(http.StatusNoContent)
}

// List maneja GET /access/grants.
func (h *AccessHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	grants, err := h.accessServ.ListGrants(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list grants failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list grants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"grants": grants})
}
