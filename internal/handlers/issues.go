package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"citypulse/api/internal/middleware"
	"citypulse/api/internal/models"
	"citypulse/api/internal/repository"
	"citypulse/api/internal/service"
)

type issueResponse struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Priority     string    `json:"priority"`
	Media        []string  `json:"media"`
	ReportedBy   string    `json:"reportedBy"`
	ContactName  string    `json:"contactName,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toIssueResponse(issue models.Issue) issueResponse {
	media := issue.MediaURLs
	if media == nil {
		media = []string{}
	}
	return issueResponse{
		ID:           issue.ID,
		Category:     string(issue.Category),
		Description:  issue.Description,
		Location:     issue.Location,
		Priority:     string(issue.Priority),
		Media:        media,
		ReportedBy:   issue.ReportedBy,
		ContactName:  issue.ContactName,
		ContactPhone: issue.ContactPhone,
		Status:       string(issue.Status),
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
}

// CreateIssue accepts the multipart report form with up to the configured
// number of media files in the "media" field.
func (h HandlerSet) CreateIssue(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
		return
	}

	input := service.SubmitInput{
		UserID:       user.ID,
		Category:     c.PostForm("category"),
		Description:  c.PostForm("description"),
		Location:     c.PostForm("location"),
		Priority:     c.PostForm("priority"),
		ContactName:  c.PostForm("contactName"),
		ContactPhone: c.PostForm("contactPhone"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["media"] {
			data, err := readUpload(file, h.cfg.Upload.MaxFileBytes)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Media file could not be read"})
				return
			}
			input.Files = append(input.Files, service.MediaFile{
				Name: file.Filename,
				Data: data,
			})
		}
	}

	issue, err := h.issues.Submit(c.Request.Context(), input)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Error()})
			return
		}
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("issue submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Issue reported successfully.",
		"data":    toIssueResponse(issue),
	})
}

func (h HandlerSet) ListIssues(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
		return
	}

	issues, err := h.issues.ListByReporter(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("list issues failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	resp := make([]issueResponse, 0, len(issues))
	for _, issue := range issues {
		resp = append(resp, toIssueResponse(issue))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h HandlerSet) GetIssue(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
		return
	}

	issue, err := h.issues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
			return
		}
		h.log.Error().Err(err).Msg("get issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		return
	}

	// Citizens only see their own reports; operators and admins see all.
	if user.Role == models.UserRoleCitizen && issue.ReportedBy != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toIssueResponse(issue)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h HandlerSet) UpdateIssueStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status is required"})
		return
	}

	id := c.Param("id")
	err := h.issues.UpdateStatus(c.Request.Context(), id, models.IssueStatus(req.Status))
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.Is(err, repository.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Error()})
		default:
			h.log.Error().Err(err).Str("issue_id", id).Msg("status update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated."})
}
