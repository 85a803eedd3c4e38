package interfaces

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"devconnect/domain"
	"devconnect/infrastructure"
	"devconnect/service"
)

type HTTPHandler struct {
	Svc     *service.Services
	Resumes *infrastructure.ResumeExtractor
}

type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	Tracing            bool
}

// NewRouter builds the gin engine with the middleware stack shared by every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		infrastructure.C("http").WithField("request_id", requestID(c)).
			Errorf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.Use(RequestID(), RequestLogger())
	if cfg.Tracing {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(infrastructure.MetricsMiddleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", infrastructure.MetricsHandler())
	return router
}

func NewHTTPHandler(router *gin.Engine, svc *service.Services, resumes *infrastructure.ResumeExtractor) {
	h := &HTTPHandler{Svc: svc, Resumes: resumes}
	authed := h.RequireAuth()

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", authed, h.Me)
	auth.GET("/verify-token", authed, h.VerifyToken)

	jobs := api.Group("/jobs")
	jobs.GET("", h.ListJobs)
	jobs.GET("/featured", h.FeaturedJobs)
	jobs.GET("/:id", h.GetJob)
	jobs.POST("", authed, h.CreateJob)
	jobs.PUT("/:id", authed, h.UpdateJob)
	jobs.PATCH("/:id", authed, h.UpdateJob)
	jobs.DELETE("/:id", authed, h.DeleteJob)
	jobs.POST("/:id/apply", authed, h.Apply)
	jobs.GET("/:id/applications", authed, h.JobApplications)

	api.PATCH("/applications/:id/status", authed, h.UpdateApplicationStatus)

	api.GET("/skills", h.ListSkills)

	users := api.Group("/users")
	users.GET("", authed, h.ListUsers)
	users.PUT("/change-password", authed, h.ChangePassword)
	users.GET("/:id", h.GetUser)
	users.GET("/:id/profile", authed, h.GetProfile)
	users.GET("/:id/applications", authed, h.UserApplications)
	users.GET("/:id/jobs", authed, h.UserJobs)
	users.GET("/:id/stats", authed, h.UserStats)
	users.PUT("/:id", authed, h.UpdateUser)
	users.DELETE("/:id", authed, h.DeleteUser)
}

func (h *HTTPHandler) ListSkills(c *gin.Context) {
	skills, err := h.Svc.Skills.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": domain.SkillsToMaps(skills)})
}
