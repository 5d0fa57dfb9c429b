package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/attachment"
	"complaint-tracker-backend/internal/model"
	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/token"
	"complaint-tracker-backend/internal/workflow"
)

// CreateComplaint handles POST /api/complaints. The request is multipart:
// the scanned token (either combined "token" or separate "payload" and
// "signature" fields), the issue fields, and zero or more "images" files.
func (h *Handler) CreateComplaint(c *gin.Context) {
	payload := c.PostForm("payload")
	signature := c.PostForm("signature")
	if combined := c.PostForm("token"); combined != "" && payload == "" {
		var err error
		payload, signature, err = token.Split(combined)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed room token"})
			return
		}
	}
	if payload == "" || signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room token is required"})
		return
	}

	issueType := c.PostForm("issue_type")
	description := c.PostForm("description")
	priority := c.PostForm("priority")
	if issueType == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_type and description are required"})
		return
	}
	if !model.IsValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	files, err := readUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded images"})
		return
	}

	complaint, err := h.engine.Submit(c.Request.Context(), payload, signature, workflow.SubmitInput{
		IssueType:   issueType,
		Description: description,
		Priority:    priority,
		SubmittedBy: c.GetHeader(actorHeader),
		Files:       files,
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints handles GET /api/complaints with filtering, free-text
// search, ordering and limit/offset pagination.
func (h *Handler) ListComplaints(c *gin.Context) {
	q := store.ComplaintQuery{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		IssueType: c.Query("issue_type"),
		Ward:      c.Query("ward"),
		Block:     c.Query("block"),
		Search:    c.Query("search"),
	}

	ordering := c.DefaultQuery("ordering", "-submitted_at")
	if len(ordering) > 0 && ordering[0] == '-' {
		q.Descending = true
		ordering = ordering[1:]
	}
	q.OrderBy = ordering

	q.Limit, _ = strconv.Atoi(c.Query("limit"))
	q.Offset, _ = strconv.Atoi(c.Query("offset"))

	complaints, total, err := h.store.ListComplaints(c.Request.Context(), q)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": complaints})
}

// ComplaintsByStatus handles GET /api/complaints/by_status.
func (h *Handler) ComplaintsByStatus(c *gin.Context) {
	status := c.Query("status")
	if !model.IsValidComplaintStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	h.listFiltered(c, store.ComplaintQuery{Status: status, Descending: true})
}

// ComplaintsByPriority handles GET /api/complaints/by_priority.
func (h *Handler) ComplaintsByPriority(c *gin.Context) {
	priority := c.Query("priority")
	if !model.IsValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	h.listFiltered(c, store.ComplaintQuery{Priority: priority, Descending: true})
}

func (h *Handler) listFiltered(c *gin.Context, q store.ComplaintQuery) {
	q.Limit, _ = strconv.Atoi(c.Query("limit"))
	q.Offset, _ = strconv.Atoi(c.Query("offset"))

	complaints, total, err := h.store.ListComplaints(c.Request.Context(), q)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": complaints})
}

// GetComplaint handles GET /api/complaints/:ticket_id.
func (h *Handler) GetComplaint(c *gin.Context) {
	complaint, err := h.store.FindComplaintByTicket(c.Request.Context(), c.Param("ticket_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaint"})
		}
		return
	}
	c.JSON(http.StatusOK, complaint)
}

type complaintUpdateRequest struct {
	Description        *string `json:"description"`
	Priority           *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedDepartment *string `json:"assigned_department"`
	Remarks            *string `json:"remarks"`
}

// UpdateComplaint handles PATCH /api/complaints/:ticket_id. Only the staff
// triage fields are writable here; status changes go through the transition
// endpoint and the ticket id, timestamps and room snapshot stay immutable.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	var req complaintUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedDepartment != nil {
		updates["assigned_department"] = *req.AssignedDepartment
	}
	if req.Remarks != nil {
		updates["remarks"] = *req.Remarks
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields supplied"})
		return
	}

	ticketID := c.Param("ticket_id")
	res := h.store.DB().Model(&model.Complaint{}).
		Where("ticket_id = ?", ticketID).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}

	complaint, err := h.store.FindComplaintByTicket(c.Request.Context(), ticketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload complaint"})
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// DeleteComplaint handles DELETE /api/complaints/:ticket_id.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.engine.Delete(c.Request.Context(), c.Param("ticket_id")); err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionRequest struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// TransitionComplaint handles POST /api/complaints/:ticket_id/status.
func (h *Handler) TransitionComplaint(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.engine.Transition(
		c.Request.Context(),
		c.Param("ticket_id"),
		req.Status,
		req.Remarks,
		c.GetHeader(actorHeader),
	)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// ReplaceAttachments handles PUT /api/complaints/:ticket_id/attachments.
// The multipart request lists the attachment ids to retain ("retained",
// repeatable) and the new "images" files; everything else is deleted.
func (h *Handler) ReplaceAttachments(c *gin.Context) {
	var retained []int64
	for _, raw := range c.PostFormArray("retained") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid retained attachment id"})
			return
		}
		retained = append(retained, id)
	}

	files, err := readUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded images"})
		return
	}

	complaint, err := h.engine.ReplaceAttachments(c.Request.Context(), c.Param("ticket_id"), retained, files)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// readUploads collects the multipart files under field into memory.
func readUploads(c *gin.Context, field string) ([]attachment.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	var files []attachment.File
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, attachment.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// writeWorkflowError maps the workflow rejection taxonomy onto HTTP statuses.
func writeWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrInvalidToken),
		errors.Is(err, workflow.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrRoomNotFound),
		errors.Is(err, workflow.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrRoomInactive),
		errors.Is(err, workflow.ErrDuplicateComplaint):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
