package api

import (
	"errors"
	"net/http"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/templates"
	"whatsapp-templates/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	Service *templates.Service
}

func NewTemplateHandler(service *templates.Service) *TemplateHandler {
	return &TemplateHandler{Service: service}
}

// GetTemplates returns stored templates from the local database
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	tmpls, err := h.Service.ListTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpls)
}

// GetTemplate returns a single template by name
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.Service.GetTemplate(c.Param("name"))
	if err != nil {
		var notFound *templates.ErrTemplateNotFound
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// GetTemplateActions lists the actions a detail view should render for the
// template. The sync action appears only when the template has both a
// provider id and an account reference.
func (h *TemplateHandler) GetTemplateActions(c *gin.Context) {
	tmpl, err := h.Service.GetTemplate(c.Param("name"))
	if err != nil {
		var notFound *templates.ErrTemplateNotFound
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": templates.AvailableActions(tmpl)})
}

// SyncTemplateStatus refreshes one template's status from Meta
func (h *TemplateHandler) SyncTemplateStatus(c *gin.Context) {
	result, err := h.Service.SyncTemplateStatus(c.Request.Context(), c.Param("name"))
	if err != nil {
		status := http.StatusInternalServerError
		var notFound *templates.ErrTemplateNotFound
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, templates.ErrMissingProviderID) || errors.Is(err, templates.ErrMissingAccount) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "title": "Sync Failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// FetchTemplates pulls all templates from Meta for every active account
func (h *TemplateHandler) FetchTemplates(c *gin.Context) {
	result, err := h.Service.FetchTemplates(c.Request.Context())
	if err != nil {
		title := "Error"
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			title = apiErr.Title()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "title": title})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateTemplate registers a template locally and submits it to Meta
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var tmpl models.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if tmpl.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template name required"})
		return
	}

	if err := h.Service.CreateTemplate(c.Request.Context(), &tmpl); err != nil {
		status := http.StatusInternalServerError
		var apiErr *whatsapp.APIError
		title := "Error"
		if errors.As(err, &apiErr) {
			title = apiErr.Title()
		}
		c.JSON(status, gin.H{"error": err.Error(), "title": title})
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

// UpdateTemplate saves local edits and pushes them upstream when allowed
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var tmpl models.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tmpl.Name = c.Param("name")

	if err := h.Service.UpdateTemplate(c.Request.Context(), &tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate removes a template upstream and locally
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.Service.DeleteTemplate(c.Request.Context(), c.Param("name")); err != nil {
		var notFound *templates.ErrTemplateNotFound
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Template deleted"})
}
