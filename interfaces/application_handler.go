package interfaces

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"devconnect/domain"
	"devconnect/service"
)

type applyRequest struct {
	ApplicantID *uint   `json:"applicant_id"`
	CoverLetter string  `json:"cover_letter"`
	ResumeURL   *string `json:"resume_url"`
}

// Apply accepts JSON or a multipart form. A multipart resume_file is converted to
// text and stored with the application for screening.
func (h *HTTPHandler) Apply(c *gin.Context) {
	jobID, ok := parseID(c, "id")
	if !ok {
		return
	}
	caller := currentUser(c)

	var req applyRequest
	var in service.ApplyInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if v := strings.TrimSpace(c.PostForm("applicant_id")); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "applicant_id must be a number"})
				return
			}
			applicant := uint(id)
			req.ApplicantID = &applicant
		}
		req.CoverLetter = c.PostForm("cover_letter")
		if v, ok := c.GetPostForm("resume_url"); ok {
			req.ResumeURL = &v
		}

		fileHeader, err := c.FormFile("resume_file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		default:
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open resume_file"})
				return
			}
			defer file.Close()

			text, err := h.Resumes.Extract(file, fileHeader.Filename)
			if err != nil {
				respondError(c, err)
				return
			}
			in.ResumeText = &text
		}
	} else if !bindJSON(c, &req) {
		return
	}

	applicantID := caller.ID
	if req.ApplicantID != nil && *req.ApplicantID != caller.ID {
		respondError(c, domain.Forbidden("cannot apply on behalf of another user"))
		return
	}
	in.CoverLetter = req.CoverLetter
	in.ResumeURL = req.ResumeURL

	app, err := h.Svc.Applications.Apply(c.Request.Context(), jobID, applicantID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.ToMap())
}

func (h *HTTPHandler) JobApplications(c *gin.Context) {
	jobID, ok := parseID(c, "id")
	if !ok {
		return
	}

	apps, err := h.Svc.Applications.ListForJob(c.Request.Context(), currentUser(c), jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": domain.ApplicationsToMaps(apps, domain.WithApplicant())})
}

func (h *HTTPHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.Svc.Applications.UpdateStatus(c.Request.Context(), currentUser(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.ToMap(domain.WithJob(), domain.WithApplicant()))
}
