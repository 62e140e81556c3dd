package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medrec-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	reportH *ReportHandler,
	biomarkerH *BiomarkerHandler,
	assessmentH *AssessmentHandler,
	accessH *AccessHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/oauth", userH.OAuthLogin)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// Todo lo clinico exige token.
	authed := r.Group("/")
	authed.Use(JWTAuthMiddleware(jwtSvc))

	authed.POST("/reports", reportH.CreateReport)
	authed.GET("/reports", reportH.ListReports)
	authed.GET("/reports/:id", reportH.GetReport)

	authed.GET("/biomarkers", biomarkerH.ListTypes)
	authed.GET("/biomarkers/:type/trend", biomarkerH.GetTrend)
	authed.POST("/observations", biomarkerH.CreateObservation)

	authed.PUT("/profile", assessmentH.UpdateProfile)
	authed.GET("/profile", assessmentH.GetProfile)
	authed.POST("/assessments", assessmentH.Evaluate)
	authed.GET("/assessments/latest", assessmentH.Latest)

	authed.POST("/access/grants", accessH.Grant)
	authed.DELETE("/access/grants/:doctor_id", accessH.Revoke)
	authed.GET("/access/grants", accessH.List)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
