package templates

import (
	"context"
	"fmt"
	"strings"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Indicator hues for the sync notification.
const (
	IndicatorChanged   = "green"
	IndicatorUnchanged = "blue"
)

// SyncResult is the outcome of a single-template status sync.
type SyncResult struct {
	Message   string `json:"message"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Indicator string `json:"indicator"`
}

// SyncTemplateStatus refreshes one template's status from the Graph API.
// Any failure leaves the stored record untouched.
func (s *Service) SyncTemplateStatus(ctx context.Context, name string) (*SyncResult, error) {
	tmpl, err := s.GetTemplate(name)
	if err != nil {
		return nil, err
	}

	if tmpl.ProviderID == "" {
		return nil, ErrMissingProviderID
	}
	if tmpl.WhatsAppAccount == "" {
		return nil, ErrMissingAccount
	}

	account, err := s.account(tmpl.WhatsAppAccount)
	if err != nil {
		return nil, err
	}

	client := s.clientFor(account)
	remote, err := client.QueryTemplates(ctx, tmpl.ActualName)
	if err != nil {
		return nil, err
	}

	for _, r := range remote {
		if r.ID == tmpl.ProviderID || r.Name == tmpl.ActualName {
			newStatus := r.Status
			if newStatus == "" {
				newStatus = "PENDING"
			}
			oldStatus := tmpl.Status
			tmpl.Status = newStatus

			if err := s.db.Model(&models.Template{}).Where("name = ?", tmpl.Name).
				Update("status", newStatus).Error; err != nil {
				return nil, err
			}
			s.notifyStatus(*tmpl, oldStatus)

			result := &SyncResult{
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Indicator: IndicatorUnchanged,
			}
			if oldStatus != newStatus {
				result.Indicator = IndicatorChanged
				result.Message = fmt.Sprintf("Template status updated from '%s' to '%s'", oldStatus, newStatus)
			} else {
				result.Message = fmt.Sprintf("Template status is already '%s'", newStatus)
			}
			s.log.Info("template status synced",
				zap.String("template", tmpl.Name),
				zap.String("old_status", oldStatus),
				zap.String("new_status", newStatus))
			return result, nil
		}
	}

	return nil, ErrNotFoundUpstream
}

// FetchResult summarizes a fetch across all active accounts.
type FetchResult struct {
	Message string `json:"message,omitempty"`
	Synced  int    `json:"synced"`
}

// FetchTemplates pulls every template of every active account from the
// Graph API and upserts them into the local store.
func (s *Service) FetchTemplates(ctx context.Context) (*FetchResult, error) {
	var accounts []models.WhatsAppAccount
	if err := s.db.Where("status = ?", "Active").Order("name").Find(&accounts).Error; err != nil {
		return nil, err
	}

	result := &FetchResult{}
	for _, account := range accounts {
		client := s.clientFor(&account)
		remote, err := client.GetTemplates(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching templates for account %q: %w", account.Name, err)
		}

		for _, r := range remote {
			if err := s.upsertFetched(account.Name, r); err != nil {
				return nil, err
			}
			result.Synced++
		}
	}

	if len(accounts) > 0 {
		result.Message = "Successfully fetched templates from meta"
	}
	return result, nil
}

func (s *Service) upsertFetched(accountName string, remote whatsapp.Template) error {
	var tmpl models.Template
	err := s.db.First(&tmpl, "actual_name = ?", remote.Name).Error
	isNew := err != nil
	if isNew {
		tmpl = models.Template{
			Name:       remote.Name,
			ActualName: remote.Name,
		}
	}

	tmpl.Status = remote.Status
	tmpl.LanguageCode = remote.Language
	tmpl.Category = remote.Category
	tmpl.ProviderID = remote.ID
	tmpl.WhatsAppAccount = accountName
	applyComponents(&tmpl, remote)

	if isNew {
		if err := s.db.Create(&tmpl).Error; err != nil {
			return err
		}
		return nil
	}

	// Replace buttons wholesale; the remote definition is authoritative.
	if err := s.db.Where("template_name = ?", tmpl.Name).
		Delete(&models.TemplateButton{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&tmpl).Error
}

// StatusUpdate is a message_template_status_update webhook event.
type StatusUpdate struct {
	Event            string
	TemplateID       string
	TemplateName     string
	TemplateLanguage string
}

// ApplyStatusUpdate applies a webhook status event: match by provider id
// first, then by actual name (backfilling a missing id). Unknown templates
// are logged, never errors.
func (s *Service) ApplyStatusUpdate(update StatusUpdate) error {
	if update.Event == "" || update.TemplateID == "" {
		s.log.Warn("template status update missing event or template id",
			zap.String("event", update.Event),
			zap.String("template_id", update.TemplateID))
		return nil
	}

	status := strings.ToUpper(update.Event)

	var tmpl models.Template
	err := s.db.First(&tmpl, "provider_id = ?", update.TemplateID).Error
	if err != nil && update.TemplateName != "" {
		err = s.db.First(&tmpl, "actual_name = ?", update.TemplateName).Error
		if err == nil && tmpl.ProviderID == "" {
			if err := s.db.Model(&models.Template{}).Where("name = ?", tmpl.Name).
				Update("provider_id", update.TemplateID).Error; err != nil {
				return err
			}
			tmpl.ProviderID = update.TemplateID
		}
	}
	if err != nil {
		s.log.Warn("template status update for unknown template",
			zap.String("template_id", update.TemplateID),
			zap.String("template_name", update.TemplateName))
		return nil
	}

	oldStatus := tmpl.Status
	tmpl.Status = status
	if err := s.db.Model(&models.Template{}).Where("name = ?", tmpl.Name).
		Update("status", status).Error; err != nil {
		return err
	}
	s.notifyStatus(tmpl, oldStatus)

	s.log.Info("template status updated from webhook",
		zap.String("template", tmpl.Name),
		zap.String("status", status))
	return nil
}

// Action is a UI action a client may render for a template.
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// AvailableActions lists the actions a detail view should render. The sync
// action requires both a provider id and an account reference.
func AvailableActions(t *models.Template) []Action {
	actions := []Action{}
	if t.ProviderID != "" && t.WhatsAppAccount != "" {
		actions = append(actions, Action{
			Name:  "sync_status",
			Label: "Sync Status from WhatsApp",
			Group: "Actions",
		})
	}
	return actions
}
