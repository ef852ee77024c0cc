package templates

import (
	"context"
	"testing"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplate_SubmitsAndStores(t *testing.T) {
	graph := &fakeGraph{createResp: &whatsapp.CreateResponse{ID: "new-id", Status: "PENDING"}}
	svc, db := newTestService(t, graph)
	seedAccount(t, db, "main", "Active")

	tmpl := &models.Template{
		Name:         "Order Update",
		Category:     "UTILITY",
		Body:         "Hello {{1}}, your order shipped.",
		SampleValues: "John",
	}
	require.NoError(t, svc.CreateTemplate(context.Background(), tmpl))

	assert.Equal(t, "order_update", tmpl.ActualName)
	assert.Equal(t, "main", tmpl.WhatsAppAccount)
	assert.Equal(t, "en", tmpl.LanguageCode)
	assert.Equal(t, "new-id", tmpl.ProviderID)
	assert.Equal(t, "PENDING", tmpl.Status)

	require.Len(t, graph.created, 1)
	submitted := graph.created[0]
	assert.Equal(t, "order_update", submitted.Name)
	assert.Equal(t, "en", submitted.Language)
	require.NotEmpty(t, submitted.Components)
	assert.Equal(t, "BODY", submitted.Components[0].Type)
	require.NotNil(t, submitted.Components[0].Example)
	assert.Equal(t, [][]string{{"John"}}, submitted.Components[0].Example.BodyText)

	var stored models.Template
	require.NoError(t, db.First(&stored, "name = ?", "Order Update").Error)
	assert.Equal(t, "new-id", stored.ProviderID)
}

func TestCreateTemplate_AdoptsExistingUpstream(t *testing.T) {
	graph := &fakeGraph{
		templates: []whatsapp.Template{
			{ID: "existing-id", Name: "order_update", Language: "en", Status: "APPROVED"},
		},
	}
	svc, db := newTestService(t, graph)
	seedAccount(t, db, "main", "Active")

	tmpl := &models.Template{
		Name:     "order_update",
		Category: "UTILITY",
		Body:     "Hello there.",
	}
	require.NoError(t, svc.CreateTemplate(context.Background(), tmpl))

	assert.Equal(t, "existing-id", tmpl.ProviderID)
	assert.Equal(t, "APPROVED", tmpl.Status)
	assert.Empty(t, graph.created)

	var stored models.Template
	require.NoError(t, db.First(&stored, "name = ?", "order_update").Error)
	assert.Equal(t, "existing-id", stored.ProviderID)
}

func TestCreateTemplate_NoActiveAccount(t *testing.T) {
	svc, _ := newTestService(t, &fakeGraph{})

	tmpl := &models.Template{Name: "order_update", Body: "Hi"}
	err := svc.CreateTemplate(context.Background(), tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WhatsApp account")
}

func TestCreateTemplate_ValidationFailureSkipsSubmission(t *testing.T) {
	graph := &fakeGraph{}
	svc, db := newTestService(t, graph)
	seedAccount(t, db, "main", "Active")

	tmpl := &models.Template{
		Name: "order_update",
		Body: "Hello {{1}}", // parameters without sample values
	}
	err := svc.CreateTemplate(context.Background(), tmpl)
	require.Error(t, err)
	assert.Empty(t, graph.created)
}

func TestUpdateTemplate_SubmittedStatusStaysLocal(t *testing.T) {
	graph := &fakeGraph{}
	svc, db := newTestService(t, graph)
	seedAccount(t, db, "main", "Active")
	seedTemplate(t, db, models.Template{
		Name:            "order_update",
		ActualName:      "order_update",
		ProviderID:      "123",
		WhatsAppAccount: "main",
		Status:          "APPROVED",
		Body:            "Old body",
	})

	tmpl := &models.Template{
		Name:            "order_update",
		ActualName:      "order_update",
		ProviderID:      "123",
		WhatsAppAccount: "main",
		Status:          "APPROVED",
		Body:            "New body",
	}
	require.NoError(t, svc.UpdateTemplate(context.Background(), tmpl))

	var stored models.Template
	require.NoError(t, db.First(&stored, "name = ?", "order_update").Error)
	assert.Equal(t, "New body", stored.Body)
}

func TestDeleteTemplate(t *testing.T) {
	t.Run("deletes upstream and locally", func(t *testing.T) {
		graph := &fakeGraph{}
		svc, db := newTestService(t, graph)
		seedAccount(t, db, "main", "Active")
		seedTemplate(t, db, models.Template{
			Name:            "order_update",
			ActualName:      "order_update",
			ProviderID:      "123",
			WhatsAppAccount: "main",
			Buttons: []models.TemplateButton{
				{TemplateName: "order_update", ButtonType: "Quick Reply", Label: "Stop", Sequence: 1},
			},
		})

		require.NoError(t, svc.DeleteTemplate(context.Background(), "order_update"))
		assert.Equal(t, []string{"order_update"}, graph.deleted)

		var count int64
		db.Model(&models.Template{}).Where("name = ?", "order_update").Count(&count)
		assert.Zero(t, count)
		db.Model(&models.TemplateButton{}).Where("template_name = ?", "order_update").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("missing upstream degrades to local delete", func(t *testing.T) {
		graph := &fakeGraph{
			deleteErr: &whatsapp.APIError{StatusCode: 404, UserTitle: "Message Template Not Found"},
		}
		svc, db := newTestService(t, graph)
		seedAccount(t, db, "main", "Active")
		seedTemplate(t, db, models.Template{
			Name:            "order_update",
			ActualName:      "order_update",
			ProviderID:      "123",
			WhatsAppAccount: "main",
		})

		require.NoError(t, svc.DeleteTemplate(context.Background(), "order_update"))

		var count int64
		db.Model(&models.Template{}).Where("name = ?", "order_update").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("other upstream errors abort", func(t *testing.T) {
		graph := &fakeGraph{
			deleteErr: &whatsapp.APIError{StatusCode: 500, Message: "server error"},
		}
		svc, db := newTestService(t, graph)
		seedAccount(t, db, "main", "Active")
		seedTemplate(t, db, models.Template{
			Name:            "order_update",
			ActualName:      "order_update",
			ProviderID:      "123",
			WhatsAppAccount: "main",
		})

		require.Error(t, svc.DeleteTemplate(context.Background(), "order_update"))

		var count int64
		db.Model(&models.Template{}).Where("name = ?", "order_update").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("local-only template deletes without provider call", func(t *testing.T) {
		graph := &fakeGraph{}
		svc, db := newTestService(t, graph)
		seedTemplate(t, db, models.Template{Name: "draft", ActualName: "draft"})

		require.NoError(t, svc.DeleteTemplate(context.Background(), "draft"))
		assert.Empty(t, graph.deleted)
	})
}
