package config

import "encoding/json"

const redactedValue = "[REDACTED]"

// SensitiveString holds secret values that must never leak into logs
// or serialized output. Use Value to read the real content.
type SensitiveString string

// String returns a redacted representation.
func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redactedValue
}

// Value returns the actual secret value.
func (s SensitiveString) Value() string {
	return string(s)
}

// MarshalJSON always serializes the redacted representation.
func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON reads the raw string value.
func (s *SensitiveString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SensitiveString(raw)
	return nil
}
