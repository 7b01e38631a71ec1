package handler

import (
	"errors"
	"html"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/middleware"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/logger"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/service"
)

// MaxUploadSize bounds an imported work-order file
const MaxUploadSize = 10 << 20

// ArtifactURLHeader carries the archive download link of a rendered plan
const ArtifactURLHeader = "X-Artifact-URL"

var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

type PlanHandler struct {
	plans  *service.QualityPlanService
	policy *bluemonday.Policy
}

func NewPlanHandler(plans *service.QualityPlanService) *PlanHandler {
	return &PlanHandler{
		plans:  plans,
		policy: bluemonday.StrictPolicy(),
	}
}

// clean strips markup from a form value, keeping quotes and ampersands as typed
func (h *PlanHandler) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(s)))
}

// Import handles a work-order file upload
func (h *PlanHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only TXT, PDF, DOC and DOCX files are allowed"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	plan, err := h.plans.Import(c.Request.Context(), middleware.GetUsername(c), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.planError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Manual handles the manual-entry form
func (h *PlanHandler) Manual(c *gin.Context) {
	var entry model.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	entry.Customer = h.clean(entry.Customer)
	entry.OrderNo = h.clean(entry.OrderNo)
	entry.WONo = h.clean(entry.WONo)
	entry.Product = h.clean(entry.Product)
	entry.Grade = h.clean(entry.Grade)

	plan, err := h.plans.Manual(c.Request.Context(), middleware.GetUsername(c), entry)
	if err != nil {
		h.planError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) planError(c *gin.Context, err error) {
	logger.Error(c.Request.Context(), "failed to generate quality plan", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate quality plan: " + err.Error()})
}

// List returns the operator's plans without their operations
func (h *PlanHandler) List(c *gin.Context) {
	plans := h.plans.List(middleware.GetUsername(c))

	result := make([]gin.H, len(plans))
	for i, p := range plans {
		result[i] = gin.H{
			"id":         p.ID,
			"source":     p.Source,
			"qcp_ref":    p.QCPRef,
			"wo_no":      p.WorkOrder.WONo,
			"customer":   p.WorkOrder.Customer,
			"product":    p.WorkOrder.Product,
			"created_at": p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"plans": result})
}

// Get returns a single plan with its operations and material
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(middleware.GetUsername(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Delete drops a plan
func (h *PlanHandler) Delete(c *gin.Context) {
	err := h.plans.Delete(c.Request.Context(), middleware.GetUsername(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}

// Document renders the plan and sends the PDF
func (h *PlanHandler) Document(c *gin.Context) {
	result, err := h.plans.Render(c.Request.Context(), middleware.GetUsername(c), c.Param("id"), middleware.GetFullName(c))
	if errors.Is(err, service.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render document: " + err.Error()})
		return
	}

	if result.ArchiveURL != "" {
		c.Header(ArtifactURLHeader, result.ArchiveURL)
	}
	c.FileAttachment(result.Artifact.Path, result.Artifact.Name)
}
