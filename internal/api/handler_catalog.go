package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/model"
)

// Departments and issue categories are plain reference data maintained by
// facilities staff.

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListDepartments handles GET /api/departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	var departments []model.Department
	if err := h.store.DB().Order("name").Find(&departments).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve departments"})
		return
	}
	c.JSON(http.StatusOK, departments)
}

// CreateDepartment handles POST /api/departments.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	department := model.Department{Name: req.Name}
	if err := h.store.DB().Create(&department).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Department already exists"})
		return
	}
	c.JSON(http.StatusCreated, department)
}

// UpdateDepartment handles PUT /api/departments/:id.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var department model.Department
	if err := h.store.DB().First(&department, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve department"})
		}
		return
	}

	department.Name = req.Name
	if err := h.store.DB().Save(&department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update department"})
		return
	}
	c.JSON(http.StatusOK, department)
}

// DeleteDepartment handles DELETE /api/departments/:id.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
		return
	}
	if err := h.store.DB().Delete(&model.Department{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete department"})
		return
	}
	c.Status(http.StatusNoContent)
}

type issueCategoryRequest struct {
	IssueCategoryCode string `json:"issue_category_code" binding:"required"`
	IssueCategoryName string `json:"issue_category_name" binding:"required"`
}

// ListIssueCategories handles GET /api/issue-categories.
func (h *Handler) ListIssueCategories(c *gin.Context) {
	var categories []model.IssueCategory
	if err := h.store.DB().Order("issue_category_code").Find(&categories).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateIssueCategory handles POST /api/issue-categories.
func (h *Handler) CreateIssueCategory(c *gin.Context) {
	var req issueCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := model.IssueCategory{
		IssueCategoryCode: req.IssueCategoryCode,
		IssueCategoryName: req.IssueCategoryName,
	}
	if err := h.store.DB().Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Issue category already exists"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateIssueCategory handles PUT /api/issue-categories/:id.
func (h *Handler) UpdateIssueCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue category ID"})
		return
	}

	var req issueCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category model.IssueCategory
	if err := h.store.DB().First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue category"})
		}
		return
	}

	category.IssueCategoryCode = req.IssueCategoryCode
	category.IssueCategoryName = req.IssueCategoryName
	if err := h.store.DB().Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteIssueCategory handles DELETE /api/issue-categories/:id.
func (h *Handler) DeleteIssueCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue category ID"})
		return
	}
	if err := h.store.DB().Delete(&model.IssueCategory{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue category"})
		return
	}
	c.Status(http.StatusNoContent)
}
