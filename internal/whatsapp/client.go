package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Credentials identifies one WhatsApp Business account against the Graph API.
type Credentials struct {
	BaseURL    string // e.g. https://graph.facebook.com
	Version    string // e.g. v19.0
	Token      string
	BusinessID string
	AppID      string
}

type Client struct {
	creds      Credentials
	httpClient *http.Client
}

func NewClient(creds Credentials) *Client {
	return &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// --- Template Structures ---

type Template struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name"`
	Language   string      `json:"language,omitempty"`
	Category   string      `json:"category,omitempty"`
	Status     string      `json:"status,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type Component struct {
	Type    string   `json:"type"`
	Format  string   `json:"format,omitempty"`
	Text    string   `json:"text,omitempty"`
	Example *Example `json:"example,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

type Example struct {
	HeaderText   []string   `json:"header_text,omitempty"`
	HeaderHandle []string   `json:"header_handle,omitempty"`
	BodyText     [][]string `json:"body_text,omitempty"`
}

type Button struct {
	Type        string   `json:"type"`
	Text        string   `json:"text,omitempty"`
	URL         string   `json:"url,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Example     []string `json:"example,omitempty"`
}

type templateList struct {
	Data []Template `json:"data"`
}

// CreateResponse is returned by Meta when a template is submitted.
type CreateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// --- Error Envelope ---

// APIError carries the decoded Graph API error envelope.
type APIError struct {
	StatusCode  int
	Message     string `json:"message"`
	UserMessage string `json:"error_user_msg"`
	UserTitle   string `json:"error_user_title"`
	Code        int    `json:"code"`
}

func (e *APIError) Error() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: status %d", e.StatusCode)
}

// Title returns the provider's error title, falling back to "Error".
func (e *APIError) Title() string {
	if e.UserTitle != "" {
		return e.UserTitle
	}
	return "Error"
}

func decodeAPIError(statusCode int, body []byte) error {
	var envelope struct {
		Error APIError `json:"error"`
	}
	apiErr := APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr = envelope.Error
		apiErr.StatusCode = statusCode
	}
	if apiErr.Message == "" && apiErr.UserMessage == "" {
		apiErr.Message = fmt.Sprintf("API error: status %d - %s", statusCode, string(body))
	}
	return &apiErr
}

// --- Transport ---

func (c *Client) sendRequest(ctx context.Context, method, rawURL string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, decodeAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *Client) templatesURL() string {
	return fmt.Sprintf("%s/%s/%s/message_templates", c.creds.BaseURL, c.creds.Version, c.creds.BusinessID)
}

// --- Template Management Methods ---

// GetTemplates lists all message templates of the business account.
func (c *Client) GetTemplates(ctx context.Context) ([]Template, error) {
	resp, err := c.sendRequest(ctx, http.MethodGet, c.templatesURL(), nil)
	if err != nil {
		return nil, err
	}

	var list templateList
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// QueryTemplates lists message templates filtered by name.
func (c *Client) QueryTemplates(ctx context.Context, name string) ([]Template, error) {
	u := c.templatesURL() + "?name=" + url.QueryEscape(name)
	resp, err := c.sendRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var list templateList
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreateTemplate submits a new template for review.
func (c *Client) CreateTemplate(ctx context.Context, tmpl Template) (*CreateResponse, error) {
	resp, err := c.sendRequest(ctx, http.MethodPost, c.templatesURL(), tmpl)
	if err != nil {
		return nil, err
	}

	var created CreateResponse
	if err := json.Unmarshal(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTemplate replaces the components of an existing template. Meta
// rejects updates once a template has been submitted.
func (c *Client) UpdateTemplate(ctx context.Context, templateID string, components []Component) error {
	u := fmt.Sprintf("%s/%s/%s/%s", c.creds.BaseURL, c.creds.Version, c.creds.BusinessID, templateID)
	payload := map[string]interface{}{"components": components}
	_, err := c.sendRequest(ctx, http.MethodPost, u, payload)
	return err
}

// DeleteTemplate deletes a template by name.
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	u := c.templatesURL() + "?name=" + url.QueryEscape(name)
	_, err := c.sendRequest(ctx, http.MethodDelete, u, nil)
	return err
}
