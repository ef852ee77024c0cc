package webhook

import (
	"encoding/json"
	"net/http"

	"whatsapp-templates/internal/config"
	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Config  *config.Config
	DB      *gorm.DB
	Service *templates.Service
	Log     *zap.Logger
}

func NewHandler(cfg *config.Config, db *gorm.DB, service *templates.Service, log *zap.Logger) *Handler {
	return &Handler{
		Config:  cfg,
		DB:      db,
		Service: service,
		Log:     log,
	}
}

// Payload is the Meta webhook envelope.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type statusUpdateValue struct {
	Event                   string      `json:"event"`
	Status                  string      `json:"status"`
	MessageTemplateID       json.Number `json:"message_template_id"`
	MessageTemplateName     string      `json:"message_template_name"`
	MessageTemplateLanguage string      `json:"message_template_language"`
}

// Verify answers Meta's subscription handshake. The verify token must match
// either a stored account's webhook token or the configured fallback.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if mode == "subscribe" && h.tokenMatches(token) {
		h.Log.Info("webhook verified successfully")
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

func (h *Handler) tokenMatches(token string) bool {
	var count int64
	h.DB.Model(&models.WhatsAppAccount{}).
		Where("webhook_verify_token = ?", token).Count(&count)
	if count > 0 {
		return true
	}
	return h.Config.VerifyToken != "" && token == h.Config.VerifyToken
}

// HandleEvent ingests webhook deliveries. Template status updates are
// applied to the store; everything else is logged and acknowledged, since
// Meta retries anything that is not a 200.
func (h *Handler) HandleEvent(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Log.Warn("invalid webhook payload", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			h.logDelivery(change)

			switch change.Field {
			case "message_template_status_update":
				h.handleStatusUpdate(change.Value)
			default:
				h.Log.Debug("ignoring webhook field", zap.String("field", change.Field))
			}
		}
	}

	c.Status(http.StatusOK)
}

func (h *Handler) logDelivery(change Change) {
	entry := models.WebhookLog{
		ID:      uuid.NewString(),
		Field:   change.Field,
		Payload: string(change.Value),
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		h.Log.Error("failed to record webhook delivery", zap.Error(err))
	}
}

func (h *Handler) handleStatusUpdate(raw json.RawMessage) {
	var value statusUpdateValue
	if err := json.Unmarshal(raw, &value); err != nil {
		h.Log.Error("failed to decode template status update", zap.Error(err))
		return
	}

	// Meta documents "event"; some deliveries carry "status" instead.
	event := value.Event
	if event == "" {
		event = value.Status
	}

	err := h.Service.ApplyStatusUpdate(templates.StatusUpdate{
		Event:            event,
		TemplateID:       value.MessageTemplateID.String(),
		TemplateName:     value.MessageTemplateName,
		TemplateLanguage: value.MessageTemplateLanguage,
	})
	if err != nil {
		h.Log.Error("failed to apply template status update", zap.Error(err))
	}
}
