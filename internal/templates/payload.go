package templates

import (
	"fmt"
	"strings"

	"whatsapp-templates/internal/models"
	"whatsapp-templates/internal/whatsapp"
)

// Button type mapping between the local model and the Graph API.
var buttonTypeToGraph = map[string]string{
	"Visit Website": "URL",
	"Call Phone":    "PHONE_NUMBER",
	"Quick Reply":   "QUICK_REPLY",
}

var buttonTypeFromGraph = map[string]string{
	"URL":          "Visit Website",
	"PHONE_NUMBER": "Call Phone",
	"QUICK_REPLY":  "Quick Reply",
}

// BuildComponents assembles the Graph API component list for a template.
func BuildComponents(t *models.Template) ([]whatsapp.Component, error) {
	var components []whatsapp.Component

	body := whatsapp.Component{
		Type: "BODY",
		Text: normalizeBody(t.Body),
	}
	paramCount := ParameterCount(t.Body)
	if paramCount > 0 {
		samples := ParseSampleValues(t.SampleValues, paramCount)
		if len(samples) < paramCount {
			for len(samples) < paramCount {
				samples = append(samples, fmt.Sprintf("Sample %d", len(samples)+1))
			}
		} else if len(samples) > paramCount {
			samples = samples[:paramCount]
		}
		body.Example = &whatsapp.Example{BodyText: [][]string{samples}}
	}
	components = append(components, body)

	if t.HeaderType != "" {
		header := whatsapp.Component{Type: "HEADER", Format: t.HeaderType}
		if t.HeaderType == "TEXT" {
			header.Text = t.Header
			if strings.Contains(t.Header, "{{") && t.SampleValues != "" {
				header.Example = &whatsapp.Example{
					HeaderText: ParseSampleValues(t.SampleValues, 0),
				}
			}
		}
		components = append(components, header)
	}

	if t.Footer != "" {
		components = append(components, whatsapp.Component{Type: "FOOTER", Text: t.Footer})
	}

	if len(t.Buttons) > 0 {
		buttonComp := whatsapp.Component{Type: "BUTTONS"}
		for _, btn := range t.Buttons {
			graphType, ok := buttonTypeToGraph[btn.ButtonType]
			if !ok {
				return nil, fmt.Errorf("unknown button type %q", btn.ButtonType)
			}
			b := whatsapp.Button{Type: graphType, Text: btn.Label}
			switch graphType {
			case "URL":
				b.URL = btn.WebsiteURL
				if btn.URLType == "Dynamic" && btn.ExampleURL != "" {
					b.Example = strings.Split(btn.ExampleURL, ",")
				}
			case "PHONE_NUMBER":
				b.PhoneNumber = btn.PhoneNumber
			}
			buttonComp.Buttons = append(buttonComp.Buttons, b)
		}
		components = append(components, buttonComp)
	}

	return components, nil
}

// applyComponents maps a fetched Graph API template onto the local record.
func applyComponents(t *models.Template, remote whatsapp.Template) {
	t.Buttons = nil
	for _, component := range remote.Components {
		switch component.Type {
		case "HEADER":
			t.HeaderType = component.Format
			if component.Format == "TEXT" {
				t.Header = component.Text
			}
		case "FOOTER":
			t.Footer = component.Text
		case "BODY":
			t.Body = component.Text
			if component.Example != nil && len(component.Example.BodyText) > 0 {
				t.SampleValues = strings.Join(component.Example.BodyText[0], ",")
			}
		case "BUTTONS":
			for i, button := range component.Buttons {
				localType, ok := buttonTypeFromGraph[button.Type]
				if !ok {
					continue
				}
				btn := models.TemplateButton{
					TemplateName: t.Name,
					ButtonType:   localType,
					Label:        button.Text,
					Sequence:     i + 1,
				}
				switch button.Type {
				case "URL":
					btn.WebsiteURL = button.URL
					if strings.Contains(button.URL, "{{") {
						btn.URLType = "Dynamic"
					} else {
						btn.URLType = "Static"
					}
					if len(button.Example) > 0 {
						btn.ExampleURL = strings.Join(button.Example, ",")
					}
				case "PHONE_NUMBER":
					btn.PhoneNumber = button.PhoneNumber
				}
				t.Buttons = append(t.Buttons, btn)
			}
		}
	}
}
