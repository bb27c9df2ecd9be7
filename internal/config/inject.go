package config

import (
	"bytes"
	"encoding/json"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// SettingsPlaceholder is the token the built index.html carries where
// the client-visible settings object is injected at serve time.
const SettingsPlaceholder = "__CLIENT_SETTINGS__"

// EncodeClient serializes the client-visible subset as a JSON object
// suitable for assignment to a global in the served page.
func EncodeClient(settings ClientSettings) ([]byte, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode client settings").
			WithCause(err)
	}
	return data, nil
}

// InjectSettings replaces the settings placeholder in an HTML template
// with the encoded client subset. Templates without the placeholder
// pass through unchanged.
func InjectSettings(html []byte, settings ClientSettings) ([]byte, error) {
	if !bytes.Contains(html, []byte(SettingsPlaceholder)) {
		return html, nil
	}
	encoded, err := EncodeClient(settings)
	if err != nil {
		return nil, err
	}
	return bytes.ReplaceAll(html, []byte(SettingsPlaceholder), encoded), nil
}
