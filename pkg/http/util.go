package http

import (
	"fmt"
	"net/url"
	"strings"
)

// TemplateSlot is the placeholder an endpoint template must contain exactly once.
const TemplateSlot = "%s"

// ValidateTemplate reports whether template has exactly one substitution slot.
// Any other '%' must start a percent-escape such as %20.
func ValidateTemplate(template string) error {
	slots := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		switch {
		case i+1 < len(template) && template[i+1] == 's':
			slots++
			i++
		case i+2 < len(template) && isHex(template[i+1]) && isHex(template[i+2]):
			i += 2
		default:
			return fmt.Errorf("endpoint template %q has an invalid %% sequence at offset %d", template, i)
		}
	}

	if slots != 1 {
		return fmt.Errorf("endpoint template %q must contain exactly one %s slot, found %d", template, TemplateSlot, slots)
	}
	return nil
}

// ExpandTemplate substitutes value into the template's slot and checks that the
// result parses as an absolute URL.
func ExpandTemplate(template, value string) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}

	expanded := strings.Replace(template, TemplateSlot, value, 1)

	parsedURL, err := url.Parse(expanded)
	if err != nil {
		return "", fmt.Errorf("error parsing endpoint URL: %w", err)
	}
	if !parsedURL.IsAbs() {
		return "", fmt.Errorf("endpoint URL %q is not absolute", expanded)
	}

	return expanded, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
