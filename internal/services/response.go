package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in response")

// extractJSON returns the first balanced {...} in text. Braces inside JSON
// strings are ignored, so markdown fences and surrounding prose do not matter.
func extractJSON(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", errNoJSONObject
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseJSONResponse decodes the first JSON object of an LLM reply into target.
func parseJSONResponse(response string, target interface{}) error {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// optString accepts any JSON scalar and keeps it as text. null, "" and
// placeholder words leave it absent.
type optString struct {
	Value *string
}

func (o *optString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	case '[':
		var items stringList
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		s = FormatBullets(items)
	case '{':
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			return err
		}
		s = compact.String()
	default:
		s = string(data)
	}

	s = strings.TrimSpace(s)
	if isPlaceholder(s) {
		return nil
	}
	o.Value = &s
	return nil
}

// stringList accepts an array of scalars or a bulleted, line or comma separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		var items []string
		for _, r := range raw {
			var item optString
			if err := item.UnmarshalJSON(r); err != nil {
				return err
			}
			if item.Value != nil {
				items = append(items, *item.Value)
			}
		}
		*l = items
		return nil
	}

	var item optString
	if err := item.UnmarshalJSON(data); err != nil {
		return err
	}
	if item.Value != nil {
		*l = splitList(*item.Value)
	}
	return nil
}

func splitList(s string) []string {
	sep := "\n"
	if !strings.Contains(s, "\n") {
		sep = ","
	}

	var items []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		part = strings.TrimLeft(part, "-*•· \t")
		part = strings.TrimSpace(part)
		if part != "" && !isPlaceholder(part) {
			items = append(items, part)
		}
	}
	return items
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "n/a", "unknown":
		return true
	}
	return false
}

// parseNumber accepts a JSON number or a numeric string. NaN and infinities are rejected.
func parseNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("value is missing")
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %q is not finite", text)
	}
	return f, nil
}
