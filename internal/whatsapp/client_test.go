package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(Credentials{
		BaseURL:    server.URL,
		Version:    "v19.0",
		Token:      "test-token",
		BusinessID: "biz-1",
	})
	c.httpClient = server.Client()
	return c
}

func TestGetTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/biz-1/message_templates", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"id":       "111",
					"name":     "welcome",
					"language": "en_US",
					"category": "MARKETING",
					"status":   "APPROVED",
					"components": []map[string]interface{}{
						{"type": "BODY", "text": "Hello {{1}}", "example": map[string]interface{}{
							"body_text": [][]string{{"John"}},
						}},
					},
				},
			},
		})
	}))
	defer server.Close()

	templates, err := newTestClient(server).GetTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "111", templates[0].ID)
	assert.Equal(t, "welcome", templates[0].Name)
	assert.Equal(t, "APPROVED", templates[0].Status)
	require.Len(t, templates[0].Components, 1)
	require.NotNil(t, templates[0].Components[0].Example)
	assert.Equal(t, [][]string{{"John"}}, templates[0].Components[0].Example.BodyText)
}

func TestQueryTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "order_update", r.URL.Query().Get("name"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"id": "222", "name": "order_update", "status": "PENDING"}},
		})
	}))
	defer server.Close()

	templates, err := newTestClient(server).QueryTemplates(context.Background(), "order_update")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "222", templates[0].ID)
}

func TestCreateTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var submitted Template
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		assert.Equal(t, "order_update", submitted.Name)

		json.NewEncoder(w).Encode(CreateResponse{ID: "333", Status: "PENDING"})
	}))
	defer server.Close()

	created, err := newTestClient(server).CreateTemplate(context.Background(), Template{
		Name:     "order_update",
		Language: "en",
		Category: "UTILITY",
	})
	require.NoError(t, err)
	assert.Equal(t, "333", created.ID)
	assert.Equal(t, "PENDING", created.Status)
}

func TestUpdateTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v19.0/biz-1/333", r.URL.Path)

		var payload struct {
			Components []Component `json:"components"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Components, 1)
		assert.Equal(t, "BODY", payload.Components[0].Type)

		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer server.Close()

	err := newTestClient(server).UpdateTemplate(context.Background(), "333", []Component{
		{Type: "BODY", Text: "Updated body"},
	})
	assert.NoError(t, err)
}

func TestDeleteTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "order_update", r.URL.Query().Get("name"))
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer server.Close()

	err := newTestClient(server).DeleteTemplate(context.Background(), "order_update")
	assert.NoError(t, err)
}

func TestAPIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message":          "Invalid parameter",
				"error_user_msg":   "Template name already exists",
				"error_user_title": "Duplicate Template",
				"code":             100,
			},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server).GetTemplates(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Template name already exists", apiErr.Error())
	assert.Equal(t, "Duplicate Template", apiErr.Title())
	assert.Equal(t, 100, apiErr.Code)
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	_, err := newTestClient(server).GetTemplates(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "status 502")
	assert.Equal(t, "Error", apiErr.Title())
}
