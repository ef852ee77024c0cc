package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// submittedStatuses are terminal for updates; Meta refuses modification of
// templates it has already reviewed or queued.
var submittedStatuses = map[string]bool{
	"PENDING":  true,
	"APPROVED": true,
	"REJECTED": true,
}

func (s *Service) prepare(t *models.Template) error {
	if t.WhatsAppAccount == "" {
		account, err := s.defaultAccount()
		if err != nil {
			return err
		}
		t.WhatsAppAccount = account.Name
	}

	if t.LanguageCode == "" {
		code := t.Language
		if code == "" {
			code = "en"
		}
		t.LanguageCode = strings.ReplaceAll(strings.ToLower(code), "-", "_")
	}

	if t.ActualName == "" {
		t.ActualName = SanitizeName(t.Name)
	} else {
		t.ActualName = SanitizeName(t.ActualName)
	}

	return Validate(t)
}

// CreateTemplate registers a template locally and submits it to Meta. When a
// template with the same name and language already exists upstream it is
// adopted instead of resubmitted.
func (s *Service) CreateTemplate(ctx context.Context, t *models.Template) error {
	if err := s.prepare(t); err != nil {
		return err
	}

	account, err := s.account(t.WhatsAppAccount)
	if err != nil {
		return err
	}
	client := s.clientFor(account)

	if existing := s.findUpstream(ctx, client, t); existing != nil {
		t.ProviderID = existing.ID
		t.Status = existing.Status
		if t.Status == "" {
			t.Status = "PENDING"
		}
		s.log.Info("template already exists upstream, adopting",
			zap.String("template", t.ActualName),
			zap.String("status", t.Status))
		return s.db.Create(t).Error
	}

	components, err := BuildComponents(t)
	if err != nil {
		return err
	}

	created, err := client.CreateTemplate(ctx, whatsapp.Template{
		Name:       t.ActualName,
		Language:   t.LanguageCode,
		Category:   t.Category,
		Components: components,
	})
	if err != nil {
		s.log.Error("template creation failed",
			zap.String("template", t.ActualName),
			zap.Error(err))
		return err
	}

	t.ProviderID = created.ID
	t.Status = created.Status
	return s.db.Create(t).Error
}

// findUpstream looks for a template with the same actual name and language
// already registered on the account. A failed check is ignored; creation
// proceeds.
func (s *Service) findUpstream(ctx context.Context, client GraphAPI, t *models.Template) *whatsapp.Template {
	remote, err := client.QueryTemplates(ctx, t.ActualName)
	if err != nil {
		return nil
	}
	for _, r := range remote {
		if r.Name == t.ActualName && r.Language == t.LanguageCode {
			return &r
		}
	}
	return nil
}

// UpdateTemplate saves local edits and pushes the rebuilt components to Meta
// when the template is still editable upstream. Submitted templates are only
// saved locally.
func (s *Service) UpdateTemplate(ctx context.Context, t *models.Template) error {
	if err := s.prepare(t); err != nil {
		return err
	}

	if t.ProviderID != "" && !submittedStatuses[strings.ToUpper(t.Status)] {
		account, err := s.account(t.WhatsAppAccount)
		if err != nil {
			return err
		}
		components, err := BuildComponents(t)
		if err != nil {
			return err
		}
		if err := s.clientFor(account).UpdateTemplate(ctx, t.ProviderID, components); err != nil {
			var apiErr *whatsapp.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 400 {
				return fmt.Errorf("WhatsApp templates cannot be updated once they are submitted; the template status is %q, edits were kept locally only", t.Status)
			}
			return fmt.Errorf("failed to update WhatsApp template: %w", err)
		}
	}

	if err := s.db.Where("template_name = ?", t.Name).
		Delete(&models.TemplateButton{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(t).Error
}

// DeleteTemplate removes a template upstream and locally. A template the
// provider no longer knows is deleted locally only.
func (s *Service) DeleteTemplate(ctx context.Context, name string) error {
	tmpl, err := s.GetTemplate(name)
	if err != nil {
		return err
	}

	if tmpl.ProviderID != "" && tmpl.WhatsAppAccount != "" {
		account, err := s.account(tmpl.WhatsAppAccount)
		if err != nil {
			return err
		}
		if err := s.clientFor(account).DeleteTemplate(ctx, tmpl.ActualName); err != nil {
			var apiErr *whatsapp.APIError
			if errors.As(err, &apiErr) && apiErr.UserTitle == "Message Template Not Found" {
				s.log.Info("template missing upstream, deleting locally",
					zap.String("template", tmpl.Name))
			} else {
				return err
			}
		}
	}

	if err := s.db.Where("template_name = ?", tmpl.Name).
		Delete(&models.TemplateButton{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&models.Template{}, "name = ?", tmpl.Name).Error
}
