package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"exam-assembly-server/ingestion"
	"exam-assembly-server/middleware"
	"exam-assembly-server/models"
	"exam-assembly-server/utils"
)

const (
	defaultErrorLogLimit = 50
	maxErrorLogLimit     = 500
)

// AdminDashboard renders the admin dashboard with metrics and recent activity.
// GET /admin/dashboard
func AdminDashboard(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := d.Store.DashboardStats(c.Request.Context())
		if err != nil {
			d.Log.Error("Error fetching dashboard stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin_dashboard", gin.H{"Title": "Exam Admin Dashboard", "Error": "Failed to load dashboard"})
			return
		}
		c.HTML(http.StatusOK, "admin_dashboard", gin.H{
			"Title":        "Exam Admin Dashboard",
			"Stats":        stats,
			"Difficulties": models.Difficulties,
			"UserEmail":    c.GetString(middleware.ContextUserEmail),
		})
	}
}

// AdminErrorLogs lists the most recent error log entries.
// GET /admin/error_logs?limit=
func AdminErrorLogs(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultErrorLogLimit)))
		if err != nil || limit < 1 {
			limit = defaultErrorLogLimit
		}
		if limit > maxErrorLogLimit {
			limit = maxErrorLogLimit
		}

		logs, err := d.Store.ListErrorLogs(c.Request.Context(), limit)
		if err != nil {
			d.Log.Error("Error fetching error logs", "error", err)
			c.HTML(http.StatusInternalServerError, "admin_error_logs", gin.H{"Title": "Error Logs", "Error": "Failed to retrieve error logs"})
			return
		}
		c.HTML(http.StatusOK, "admin_error_logs", gin.H{
			"Title":     "Error Logs",
			"ErrorLogs": logs,
			"Limit":     limit,
			"UserEmail": c.GetString(middleware.ContextUserEmail),
		})
	}
}

// AdminSettings shows the tunable settings.
// GET /admin/settings
func AdminSettings(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := d.Store.ListSettings(c.Request.Context())
		if err != nil {
			d.Log.Error("Error fetching settings", "error", err)
			c.HTML(http.StatusInternalServerError, "admin_settings", gin.H{"Title": "Settings", "Error": "Failed to retrieve settings"})
			return
		}
		c.HTML(http.StatusOK, "admin_settings", gin.H{
			"Title":     "Settings",
			"Settings":  settings,
			"UserEmail": c.GetString(middleware.ContextUserEmail),
		})
	}
}

// validateSetting checks that value parses for the type the setting is read as.
func validateSetting(key, value string) error {
	switch key {
	case settingThinMarginRatio:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	case settingDefaultVariantCount, settingMaxVariantCount:
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
	case settingDefaultDistribution:
		spec, err := utils.ParseDistribution(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if spec.Total() < 1 {
			return fmt.Errorf("%s must ask for at least one question", key)
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// AdminUpdateSettings updates one setting.
// POST /admin/settings
func AdminUpdateSettings(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateSettingRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}
		if err := validateSetting(req.Key, req.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		who := actor(c)
		if err := d.Store.UpdateSetting(ctx, req.Key, req.Value, who); err != nil {
			d.Log.Error("Error updating setting", "key", req.Key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
			return
		}
		d.Store.LogAdminEvent(ctx, who, "UPDATE_SETTING", req.Key, fmt.Sprintf("Set to: %s", req.Value))
		c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
	}
}

// TriggerIngestion reloads the question bank on demand.
// POST /admin/ingest
func TriggerIngestion(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.BankPath == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No question bank path is configured"})
			return
		}
		ctx := c.Request.Context()
		who := actor(c)

		report, err := ingestion.ProcessBank(ctx, d.Store, d.BankPath, d.Log)
		if err != nil {
			d.Log.Error("Manual ingestion failed", "path", d.BankPath, "error", err)
			d.Store.LogAdminEvent(ctx, who, "MANUAL_INGESTION_FAILED", d.BankPath, fmt.Sprintf("Error: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Ingestion failed: %v", err)})
			return
		}
		d.Store.LogAdminEvent(ctx, who, "MANUAL_INGESTION", d.BankPath, fmt.Sprintf("%d loaded, %d rejected", report.LoadedCount, len(report.Rejected)))
		c.JSON(http.StatusOK, report)
	}
}
