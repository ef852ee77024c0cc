package models

import (
	"time"
)

// WhatsAppAccount holds the credentials for one WhatsApp Business account.
type WhatsAppAccount struct {
	Name               string    `gorm:"primaryKey" json:"name"`
	Token              string    `gorm:"type:text" json:"-"`
	URL                string    `gorm:"type:varchar(255)" json:"url"`
	Version            string    `gorm:"type:varchar(20)" json:"version"`
	BusinessID         string    `gorm:"type:varchar(100)" json:"business_id"`
	AppID              string    `gorm:"type:varchar(100)" json:"app_id"`
	WebhookVerifyToken string    `gorm:"type:varchar(255)" json:"-"`
	Status             string    `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhatsAppAccount) TableName() string {
	return "whatsapp_accounts"
}

// Template represents a WhatsApp message template. Name is the local record
// identifier; ProviderID is assigned by Meta once the template has been
// registered and is empty until then.
type Template struct {
	Name            string           `gorm:"primaryKey" json:"name"`
	ActualName      string           `gorm:"type:varchar(255);index" json:"actual_name"`
	ProviderID      string           `gorm:"type:varchar(100);index;column:provider_id" json:"id"`
	WhatsAppAccount string           `gorm:"type:varchar(255);column:whatsapp_account" json:"whatsapp_account"`
	Language        string           `gorm:"type:varchar(50)" json:"language"`
	LanguageCode    string           `gorm:"type:varchar(20)" json:"language_code"`
	Category        string           `gorm:"type:varchar(100)" json:"category"`
	Status          string           `gorm:"type:varchar(50)" json:"status"`
	HeaderType      string           `gorm:"type:varchar(20)" json:"header_type"`
	Header          string           `gorm:"type:text" json:"header"`
	Body            string           `gorm:"type:text" json:"body"`
	Footer          string           `gorm:"type:varchar(255)" json:"footer"`
	SampleValues    string           `gorm:"type:text" json:"sample_values"`
	Buttons         []TemplateButton `gorm:"foreignKey:TemplateName;references:Name;constraint:OnDelete:CASCADE;" json:"buttons"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// TemplateButton is one call-to-action or quick-reply button on a template.
type TemplateButton struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TemplateName string `gorm:"type:varchar(255);index" json:"template_name"`
	ButtonType   string `gorm:"type:varchar(50)" json:"button_type"`
	Label        string `gorm:"type:varchar(255)" json:"label"`
	WebsiteURL   string `gorm:"type:text" json:"website_url"`
	URLType      string `gorm:"type:varchar(20)" json:"url_type"`
	PhoneNumber  string `gorm:"type:varchar(50)" json:"phone_number"`
	ExampleURL   string `gorm:"type:text" json:"example_url"`
	Sequence     int    `json:"sequence"`
}

func (TemplateButton) TableName() string {
	return "template_buttons"
}

// WebhookLog keeps the raw payload of every webhook delivery for debugging.
type WebhookLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Field     string    `gorm:"type:varchar(100)" json:"field"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
