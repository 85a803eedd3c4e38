package interfaces

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"devconnect/domain"
	"devconnect/service"
)

// ListJobs serves GET /api/jobs?search=&skill=&status=&featured=&page=&per_page=
func (h *HTTPHandler) ListJobs(c *gin.Context) {
	filter := service.JobFilter{
		Search: c.Query("search"),
		Skill:  c.Query("skill"),
		Status: c.Query("status"),
	}
	if v := strings.TrimSpace(c.Query("featured")); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
			return
		}
		filter.Featured = &featured
	}
	page := service.NewPage(
		queryInt(c, 1, "page"),
		queryInt(c, service.DefaultPerPage, "per_page", "limit"),
	)

	jobs, total, err := h.Svc.Jobs.SearchJobs(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":       domain.JobsToMaps(jobs, domain.WithClient(), domain.WithSkills()),
		"pagination": service.NewPagination(page, total),
	})
}

func (h *HTTPHandler) FeaturedJobs(c *gin.Context) {
	jobs, err := h.Svc.Jobs.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":  domain.JobsToMaps(jobs, domain.WithClient(), domain.WithSkills()),
		"count": len(jobs),
	})
}

func (h *HTTPHandler) GetJob(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	job, err := h.Svc.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job.ToMap(domain.WithClient(), domain.WithSkills()))
}

func (h *HTTPHandler) CreateJob(c *gin.Context) {
	var req service.JobInput
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.Svc.Jobs.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job.ToMap(domain.WithClient(), domain.WithSkills()))
}

// UpdateJob serves both PUT and PATCH; only the fields present in the body change.
func (h *HTTPHandler) UpdateJob(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.JobInput
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.Svc.Jobs.Update(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job.ToMap(domain.WithClient(), domain.WithSkills()))
}

func (h *HTTPHandler) DeleteJob(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Svc.Jobs.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}
