package templates

import (
	"context"
	"fmt"
	"testing"

	"whatsapp-templates/internal/database"
	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"

	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeGraph is a scriptable GraphAPI double.
type fakeGraph struct {
	templates []whatsapp.Template
	getErr    error
	queryErr  error

	created    []whatsapp.Template
	createResp *whatsapp.CreateResponse
	createErr  error

	updateErr  error
	deleteErr  error
	deleted    []string
	queryCalls []string
}

func (f *fakeGraph) GetTemplates(ctx context.Context) ([]whatsapp.Template, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.templates, nil
}

func (f *fakeGraph) QueryTemplates(ctx context.Context, name string) ([]whatsapp.Template, error) {
	f.queryCalls = append(f.queryCalls, name)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var matched []whatsapp.Template
	for _, t := range f.templates {
		if t.Name == name {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (f *fakeGraph) CreateTemplate(ctx context.Context, tmpl whatsapp.Template) (*whatsapp.CreateResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, tmpl)
	if f.createResp != nil {
		return f.createResp, nil
	}
	return &whatsapp.CreateResponse{ID: "created-id", Status: "PENDING"}, nil
}

func (f *fakeGraph) UpdateTemplate(ctx context.Context, templateID string, components []whatsapp.Component) error {
	return f.updateErr
}

func (f *fakeGraph) DeleteTemplate(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) NotifyTemplateStatus(tmpl models.Template, oldStatus string) {
	n.events = append(n.events, fmt.Sprintf("%s:%s->%s", tmpl.Name, oldStatus, tmpl.Status))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T, graph *fakeGraph) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewService(db, zaptest.NewLogger(t), func(creds whatsapp.Credentials) GraphAPI {
		return graph
	})
	return svc, db
}

func seedAccount(t *testing.T, db *gorm.DB, name, status string) {
	t.Helper()
	account := models.WhatsAppAccount{
		Name:       name,
		Token:      "secret",
		URL:        "https://graph.facebook.com",
		Version:    "v19.0",
		BusinessID: "biz-1",
		Status:     status,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
}

func seedTemplate(t *testing.T, db *gorm.DB, tmpl models.Template) {
	t.Helper()
	if err := db.Create(&tmpl).Error; err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
}
