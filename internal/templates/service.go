package templates

import (
	"context"
	"errors"
	"fmt"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GraphAPI is the slice of the WhatsApp client the service depends on.
type GraphAPI interface {
	GetTemplates(ctx context.Context) ([]whatsapp.Template, error)
	QueryTemplates(ctx context.Context, name string) ([]whatsapp.Template, error)
	CreateTemplate(ctx context.Context, tmpl whatsapp.Template) (*whatsapp.CreateResponse, error)
	UpdateTemplate(ctx context.Context, templateID string, components []whatsapp.Component) error
	DeleteTemplate(ctx context.Context, name string) error
}

// ClientFactory builds a Graph API client for one account's credentials.
type ClientFactory func(creds whatsapp.Credentials) GraphAPI

// Notifier receives template status change events for dashboard push.
type Notifier interface {
	NotifyTemplateStatus(tmpl models.Template, oldStatus string)
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	newClient ClientFactory

	// Notifier is optional; status changes are broadcast when set.
	Notifier Notifier
}

// NewService wires the template service. A nil factory uses the real Graph
// API client.
func NewService(db *gorm.DB, log *zap.Logger, factory ClientFactory) *Service {
	if factory == nil {
		factory = func(creds whatsapp.Credentials) GraphAPI {
			return whatsapp.NewClient(creds)
		}
	}
	return &Service{db: db, log: log, newClient: factory}
}

var (
	ErrMissingProviderID = errors.New("Template ID is missing. Cannot sync status.")
	ErrMissingAccount    = errors.New("WhatsApp Account is not set for this template.")
	ErrNotFoundUpstream  = errors.New("Template not found in WhatsApp API. It may have been deleted.")
)

// ErrTemplateNotFound reports a missing local record.
type ErrTemplateNotFound struct {
	Name string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// GetTemplate loads one template with its buttons.
func (s *Service) GetTemplate(name string) (*models.Template, error) {
	var tmpl models.Template
	err := s.db.Preload("Buttons").First(&tmpl, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ErrTemplateNotFound{Name: name}
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ListTemplates returns all stored templates with their buttons.
func (s *Service) ListTemplates() ([]models.Template, error) {
	var tmpls []models.Template
	if err := s.db.Preload("Buttons").Order("name").Find(&tmpls).Error; err != nil {
		return nil, err
	}
	if tmpls == nil {
		tmpls = []models.Template{}
	}
	return tmpls, nil
}

func (s *Service) account(name string) (*models.WhatsAppAccount, error) {
	var account models.WhatsAppAccount
	err := s.db.First(&account, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("WhatsApp account %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) defaultAccount() (*models.WhatsAppAccount, error) {
	var account models.WhatsAppAccount
	err := s.db.Where("status = ?", "Active").Order("name").First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("please set up an active WhatsApp account or select an available WhatsApp account")
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) clientFor(account *models.WhatsAppAccount) GraphAPI {
	return s.newClient(whatsapp.Credentials{
		BaseURL:    account.URL,
		Version:    account.Version,
		Token:      account.Token,
		BusinessID: account.BusinessID,
		AppID:      account.AppID,
	})
}

func (s *Service) notifyStatus(tmpl models.Template, oldStatus string) {
	if s.Notifier != nil && tmpl.Status != oldStatus {
		s.Notifier.NotifyTemplateStatus(tmpl, oldStatus)
	}
}
