package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"exam-assembly-server/config"
	"exam-assembly-server/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var adminPages = []string{"admin_dashboard", "admin_error_logs", "admin_settings"}

// NewRenderer loads the admin HTML templates, each page wrapped in the shared layout.
func NewRenderer() (multitemplate.Renderer, error) {
	layout, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read layout template: %w", err)
	}
	renderer := multitemplate.NewRenderer()
	for _, name := range adminPages {
		page, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		renderer.AddFromStringsFuncs(name, template.FuncMap{}, string(layout), string(page))
	}
	return renderer, nil
}

// SetupRouter wires every route onto a new gin engine.
func SetupRouter(d *Deps, firm config.FIRMConfig) (*gin.Engine, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// FIRM JWT authentication middleware for API and Admin routes
	authMiddleware := middleware.AuthMiddleware(firm.JWTSigningKey, firm.Issuer, d.Log)

	// Students reach their variant with the access code alone
	router.GET("/api/v1/access/:code/variants/:variant", GetStudentVariant(d))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	apiV1.Use(middleware.RoleCheckMiddleware(middleware.RoleAdmin, middleware.RoleCoordinator))
	{
		apiV1.GET("/questions", GetQuestions(d))
		apiV1.POST("/distribution/analyze", AnalyzeDistribution(d))
		apiV1.POST("/exams", CreateExam(d))
		apiV1.GET("/exams/:exam_id", GetExam(d))
		apiV1.POST("/exams/:exam_id/selection/auto", AutoSelectQuestions(d))
		apiV1.PUT("/exams/:exam_id/selection", SetManualSelection(d))
		apiV1.POST("/exams/:exam_id/variants", GenerateVariants(d))
		apiV1.GET("/exams/:exam_id/variants", ListVariants(d))
		apiV1.POST("/exams/:exam_id/access_code", RegenerateAccessCode(d))
		apiV1.POST("/access_codes/validate", ValidateAccessCode(d))
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.Use(middleware.RoleCheckMiddleware(middleware.RoleAdmin, middleware.RoleCoordinator))
	{
		admin.GET("/dashboard", AdminDashboard(d))
		admin.GET("/error_logs", AdminErrorLogs(d))
		admin.GET("/settings", AdminSettings(d))
		admin.POST("/settings", AdminUpdateSettings(d))
		admin.POST("/ingest", TriggerIngestion(d))
	}
	return router, nil
}
