package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/internal/application"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	"github.com/oksasatya/project-tracker/pkg/response"
)

type ProjectService interface {
	Create(ctx context.Context, in application.CreateProjectInput) (*entity.Project, error)
	FindAll(ctx context.Context, status *entity.ProjectStatus) ([]entity.Project, error)
	FindOne(ctx context.Context, id string) (*entity.Project, error)
	Update(ctx context.Context, id string, in application.UpdateProjectInput) (*entity.Project, error)
	Remove(ctx context.Context, id string) (*entity.Project, error)
	Search(ctx context.Context, query string, status *entity.ProjectStatus) ([]entity.Project, error)
	Stats(ctx context.Context) (*entity.ProjectStats, error)
}

type ProjectHandler struct {
	Service ProjectService
	Logger  *logrus.Logger
}

func NewProjectHandler(svc ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Service: svc, Logger: logger}
}

type createProjectRequest struct {
	Name               string               `json:"name" binding:"required"`
	Status             entity.ProjectStatus `json:"status" binding:"required,projectstatus"`
	Deadline           string               `json:"deadline" binding:"required,isodate"`
	AssignedTeamMember string               `json:"assignedTeamMember" binding:"required"`
	Budget             *float64             `json:"budget" binding:"required,gte=0"`
}

type updateProjectRequest struct {
	Name               *string               `json:"name" binding:"omitempty,min=1"`
	Status             *entity.ProjectStatus `json:"status" binding:"omitempty,projectstatus"`
	Deadline           *string               `json:"deadline" binding:"omitempty,isodate"`
	AssignedTeamMember *string               `json:"assignedTeamMember" binding:"omitempty,min=1"`
	Budget             *float64              `json:"budget" binding:"omitempty,gte=0"`
}

type listQuery struct {
	Status string `form:"status" binding:"omitempty,projectstatus"`
	Q      string `form:"q"`
}

func (q listQuery) status() *entity.ProjectStatus {
	if q.Status == "" {
		return nil
	}
	s := entity.ProjectStatus(q.Status)
	return &s
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.Create(c.Request.Context(), application.CreateProjectInput{
		Name:               req.Name,
		Status:             req.Status,
		Deadline:           req.Deadline,
		AssignedTeamMember: req.AssignedTeamMember,
		Budget:             *req.Budget,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, p)
}

// List GET /projects?status=
func (h *ProjectHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.FindAll(c.Request.Context(), q.status())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// Search GET /projects/search?q=&status=
func (h *ProjectHandler) Search(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.Search(c.Request.Context(), q.Q, q.status())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// Stats GET /projects/stats
func (h *ProjectHandler) Stats(c *gin.Context) {
	st, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Service.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

// Update PATCH /projects/:id; an empty body changes nothing.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	p, err := h.Service.Update(c.Request.Context(), c.Param("id"), application.UpdateProjectInput{
		Name:               req.Name,
		Status:             req.Status,
		Deadline:           req.Deadline,
		AssignedTeamMember: req.AssignedTeamMember,
		Budget:             req.Budget,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}

// Delete DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	p, err := h.Service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, p)
}
