package templates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"whatsapp-templates/internal/models"
)

// WhatsApp character limits. Media and authentication templates are approved
// against the stricter 1024 body limit.
const (
	bodyLimitStandard = 4096
	bodyLimitStrict   = 1024
	headerLimit       = 60
	footerLimit       = 60
	headerParamLimit  = 60
	bodyParamLimit    = 1000
)

var (
	nameRe       = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	separatorRe  = regexp.MustCompile(`[\s\-.]+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9_]`)
	repeatRe     = regexp.MustCompile(`_+`)
	stripRe      = regexp.MustCompile(`[^a-z0-9]`)
	parameterRe  = regexp.MustCompile(`\{\{(\d+)\}\}`)
	mediaHeaders = map[string]bool{"IMAGE": true, "VIDEO": true, "DOCUMENT": true}
)

// SanitizeName converts a display name into a Meta-acceptable template name:
// lowercase letters, digits and underscores, starting with a letter.
func SanitizeName(name string) string {
	if name == "" {
		return ""
	}
	sanitized := strings.ToLower(name)
	sanitized = separatorRe.ReplaceAllString(sanitized, "_")
	sanitized = invalidRe.ReplaceAllString(sanitized, "")
	sanitized = repeatRe.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized != "" && sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		stripped := stripRe.ReplaceAllString(strings.ToLower(name), "")
		if len(stripped) > 20 {
			stripped = stripped[:20]
		}
		sanitized = "template_" + stripped
	}
	return sanitized
}

// ParameterCount returns the highest {{n}} placeholder index in the body.
func ParameterCount(body string) int {
	matches := parameterRe.FindAllStringSubmatch(body, -1)
	max := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

// ParseSampleValues splits a sample-values string into a list. Supported
// formats, tried in order: JSON array, pipe-separated, comma-separated.
func ParseSampleValues(raw string, expectedCount int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		var parsed []interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			values := make([]string, 0, len(parsed))
			for _, v := range parsed {
				s := strings.TrimSpace(fmt.Sprint(v))
				if s != "" {
					values = append(values, s)
				}
			}
			return values
		}
	}

	if strings.Contains(raw, "|") {
		values := splitAndTrim(raw, "|")
		if expectedCount <= 0 || len(values) == expectedCount {
			return values
		}
	}

	return splitAndTrim(raw, ",")
}

func splitAndTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}

// bodyLimitFor returns the applicable body limit and a description of the
// template class it derives from.
func bodyLimitFor(t *models.Template) (int, string) {
	switch {
	case t.Category == "AUTHENTICATION" || t.Category == "OTP":
		return bodyLimitStrict, "AUTHENTICATION"
	case mediaHeaders[t.HeaderType]:
		return bodyLimitStrict, "media (IMAGE/VIDEO/DOCUMENT header)"
	case t.Category != "":
		return bodyLimitStandard, t.Category
	default:
		return bodyLimitStandard, "standard"
	}
}

// Validate checks a template against the naming rules and character limits
// Meta enforces during approval.
func Validate(t *models.Template) error {
	if t.Name != "" {
		sanitized := SanitizeName(t.Name)
		if !nameRe.MatchString(sanitized) {
			return fmt.Errorf("template name %q contains invalid characters: template names can only contain lowercase letters, numbers, and underscores, and must start with a letter", t.Name)
		}
	}

	if t.Body != "" {
		limit, class := bodyLimitFor(t)
		if len(t.Body) > limit {
			return fmt.Errorf("template body exceeds WhatsApp limit of %d characters for %s templates (current length: %d)", limit, class, len(t.Body))
		}
	}

	if t.HeaderType == "TEXT" && len(t.Header) > headerLimit {
		return fmt.Errorf("header text exceeds WhatsApp limit of %d characters (current length: %d)", headerLimit, len(t.Header))
	}

	if len(t.Footer) > footerLimit {
		return fmt.Errorf("footer exceeds WhatsApp limit of %d characters (current length: %d)", footerLimit, len(t.Footer))
	}

	paramCount := ParameterCount(t.Body)
	if paramCount > 0 {
		if strings.TrimSpace(t.SampleValues) == "" {
			return fmt.Errorf("sample values are required when the template has parameters: provide %d values as a JSON array, pipe-separated, or comma-separated list", paramCount)
		}
		samples := ParseSampleValues(t.SampleValues, paramCount)
		if len(samples) != paramCount {
			return fmt.Errorf("sample values count (%d) does not match template parameter count (%d)", len(samples), paramCount)
		}
		if err := validateSampleLengths(t, samples); err != nil {
			return err
		}
	}

	return nil
}

func validateSampleLengths(t *models.Template, samples []string) error {
	for i, value := range samples {
		idx := i + 1
		placeholder := fmt.Sprintf("{{%d}}", idx)
		inHeader := t.HeaderType == "TEXT" && strings.Contains(t.Header, placeholder)

		if inHeader {
			if len(value) > headerParamLimit {
				return fmt.Errorf("sample value #%d exceeds WhatsApp header parameter limit of %d characters (current length: %d)", idx, headerParamLimit, len(value))
			}
		} else if len(value) > bodyParamLimit {
			return fmt.Errorf("sample value #%d exceeds WhatsApp body parameter limit of %d characters (current length: %d)", idx, bodyParamLimit, len(value))
		}
	}
	return nil
}

// normalizeBody converts Windows newlines and strips trailing blank lines so
// the submitted text matches what Meta echoes back.
func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.TrimRight(body, "\n")
}
