package util

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// SerializeToJSONString serializes the given struct to a JSON string.
func SerializeToJSONString(v interface{}) (string, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

// DeserializeFromJSONString deserializes the given JSON string to the given struct.
func DeserializeFromJSONString(jsonString string, v interface{}) error {
	// Check if v is a pointer
	if reflect.ValueOf(v).Kind() != reflect.Ptr {
		return errors.New("input must be a pointer")
	}
	return json.Unmarshal([]byte(jsonString), v)
}

// StripCodeFences removes markdown code-fence markup that language models
// wrap around JSON output despite instructions not to. Applying it to
// already-clean text is a no-op, so callers can strip unconditionally.
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseModelJSON strips code fences from raw model output and unmarshals
// the remainder into v.
func ParseModelJSON(raw string, v interface{}) error {
	return DeserializeFromJSONString(StripCodeFences(raw), v)
}
