package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devconnect/domain"
	"devconnect/service"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	filter := service.UserFilter{
		Search:   c.Query("search"),
		Company:  c.Query("company"),
		Position: c.Query("position"),
		Role:     c.Query("role"),
	}
	page := service.NewPage(
		queryInt(c, 1, "page"),
		queryInt(c, service.DefaultPerPage, "per_page", "limit"),
	)

	users, total, err := h.Svc.Users.SearchUsers(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToMap(domain.Public(), domain.WithSkills()))
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      out,
		"pagination": service.NewPagination(page, total),
	})
}

func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	u, err := h.Svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToMap(domain.Public()))
}

func (h *HTTPHandler) GetProfile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	u, err := h.Svc.Users.Profile(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.ToMap(domain.WithSkills()))
}

func (h *HTTPHandler) UserApplications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	apps, err := h.Svc.Users.Applications(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": domain.ApplicationsToMaps(apps, domain.WithJob())})
}

func (h *HTTPHandler) UserJobs(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	jobs, err := h.Svc.Users.PostedJobs(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": domain.JobsToMaps(jobs, domain.WithSkills())})
}

func (h *HTTPHandler) UserStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	stats, err := h.Svc.Users.Stats(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UserUpdate
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.Svc.Users.Update(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    u.ToMap(domain.WithSkills()),
	})
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Svc.Users.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
