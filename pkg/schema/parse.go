package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDocument decodes a form document from JSON or YAML. The payload format
// is sniffed: documents starting with '{' decode as JSON, everything else
// goes through the YAML decoder (which also accepts JSON, but the dedicated
// path keeps JSON error messages precise).
func ParseDocument(doc Document) (Form, error) {
	raw := doc.Raw()
	if len(raw) == 0 {
		return Form{}, errors.New("schema: document payload is empty")
	}

	var form Form
	if looksLikeJSON(raw) {
		if err := json.Unmarshal(raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode json document: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &form); err != nil {
			return Form{}, fmt.Errorf("schema: decode yaml document: %w", err)
		}
	}

	if form.ID == "" {
		return Form{}, errors.New("schema: form id is required")
	}
	if len(form.Fields) == 0 && len(form.Groups) == 0 {
		return Form{}, fmt.Errorf("schema: form %q declares no fields", form.ID)
	}
	return form, nil
}

// ParseBytes is a convenience wrapper for callers holding a raw payload.
func ParseBytes(raw []byte) (Form, error) {
	doc, err := NewDocument(SourceFromFS("inline"), raw)
	if err != nil {
		return Form{}, err
	}
	return ParseDocument(doc)
}

func looksLikeJSON(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}
