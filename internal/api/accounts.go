package api

import (
	"errors"
	"net/http"

	"whatsapp-templates/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

func (h *AccountHandler) GetAccounts(c *gin.Context) {
	var accounts []models.WhatsAppAccount
	if err := h.DB.Order("name").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if accounts == nil {
		accounts = []models.WhatsAppAccount{}
	}
	c.JSON(http.StatusOK, accounts)
}

// AccountRequest carries the writable account fields, including the secrets
// that are never serialized back out.
type AccountRequest struct {
	Name               string `json:"name"`
	Token              string `json:"token"`
	URL                string `json:"url"`
	Version            string `json:"version"`
	BusinessID         string `json:"business_id"`
	AppID              string `json:"app_id"`
	WebhookVerifyToken string `json:"webhook_verify_token"`
	Status             string `json:"status"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account name required"})
		return
	}
	if req.Status == "" {
		req.Status = "Active"
	}

	account := models.WhatsAppAccount{
		Name:               req.Name,
		Token:              req.Token,
		URL:                req.URL,
		Version:            req.Version,
		BusinessID:         req.BusinessID,
		AppID:              req.AppID,
		WebhookVerifyToken: req.WebhookVerifyToken,
		Status:             req.Status,
	}
	if err := h.DB.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	name := c.Param("name")

	var account models.WhatsAppAccount
	if err := h.DB.First(&account, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Token != "" {
		account.Token = req.Token
	}
	if req.URL != "" {
		account.URL = req.URL
	}
	if req.Version != "" {
		account.Version = req.Version
	}
	if req.BusinessID != "" {
		account.BusinessID = req.BusinessID
	}
	if req.AppID != "" {
		account.AppID = req.AppID
	}
	if req.WebhookVerifyToken != "" {
		account.WebhookVerifyToken = req.WebhookVerifyToken
	}
	if req.Status != "" {
		account.Status = req.Status
	}

	if err := h.DB.Save(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	name := c.Param("name")
	result := h.DB.Delete(&models.WhatsAppAccount{}, "name = ?", name)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Account deleted"})
}
