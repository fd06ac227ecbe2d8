package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"emergency-report-service/directory"
	"emergency-report-service/models"
	"emergency-report-service/service"
)

// CreateReportRequest is the request body for creating a report
type CreateReportRequest struct {
	ReportType    models.ReportType `json:"reportType" binding:"required"`
	ContactNumber string            `json:"contactNumber" binding:"required"`
	Description   string            `json:"description"`
	SendNow       bool              `json:"sendNow"`
}

// CreateReportResponse carries the created record and, when SendNow
// was set, the outcome of the immediate delivery attempt.
type CreateReportResponse struct {
	Report    *models.OfflineEmergencyReport `json:"report"`
	Attempted bool                           `json:"attempted"`
	Delivered bool                           `json:"delivered"`
}

// ReportHandler handles HTTP requests for the report service
type ReportHandler struct {
	reports       *service.ReportService
	retentionDays int
}

// NewReportHandler creates a new handler instance
func NewReportHandler(reports *service.ReportService, retentionDays int) *ReportHandler {
	return &ReportHandler{
		reports:       reports,
		retentionDays: retentionDays,
	}
}

// RegisterRoutes attaches all endpoints to the router
func (h *ReportHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v3")
	api.POST("/report", h.CreateReport)
	api.GET("/reports", h.ListReports)
	api.GET("/reports/pending", h.ListPending)
	api.POST("/reports/retry", h.RetryPending)
	api.POST("/reports/prune", h.PruneReports)
	api.GET("/contacts", h.ListContacts)
	api.GET("/facilities", h.ListFacilities)
	api.GET("/facilities/geojson", h.FacilitiesGeoJSON)
	router.GET("/health", h.Health)
}

// CreateReport handles POST /api/v3/report
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	report, err := h.reports.Create(c.Request.Context(), req.ReportType, req.ContactNumber, req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	resp := CreateReportResponse{Report: report}
	if req.SendNow {
		resp.Attempted = true
		resp.Delivered = h.reports.AttemptDelivery(c.Request.Context(), report)
	}
	c.JSON(http.StatusOK, resp)
}

// ListReports handles GET /api/v3/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": h.reports.ListAll()})
}

// ListPending handles GET /api/v3/reports/pending
func (h *ReportHandler) ListPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": h.reports.ListPending()})
}

// RetryPending handles POST /api/v3/reports/retry
func (h *ReportHandler) RetryPending(c *gin.Context) {
	attempted := len(h.reports.ListPending())
	succeeded := h.reports.RetrySweep(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"attempted": attempted,
		"succeeded": succeeded,
	})
}

// PruneReports handles POST /api/v3/reports/prune
func (h *ReportHandler) PruneReports(c *gin.Context) {
	days := h.retentionDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "days must be a positive integer",
			})
			return
		}
		days = n
	}
	h.reports.PruneOlderThan(days)
	c.JSON(http.StatusOK, gin.H{
		"days":      days,
		"remaining": len(h.reports.ListAll()),
	})
}

// ListContacts handles GET /api/v3/contacts
func (h *ReportHandler) ListContacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contacts": directory.Contacts()})
}

// ListFacilities handles GET /api/v3/facilities
func (h *ReportHandler) ListFacilities(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon is required"})
		return
	}

	limit := 5
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	emergencyOnly := c.Query("emergency_only") == "true"

	c.JSON(http.StatusOK, gin.H{
		"facilities": directory.Nearest(lat, lng, limit, emergencyOnly),
	})
}

// FacilitiesGeoJSON handles GET /api/v3/facilities/geojson
func (h *ReportHandler) FacilitiesGeoJSON(c *gin.Context) {
	c.JSON(http.StatusOK, directory.FeatureCollection())
}

// Health handles GET /health
func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
