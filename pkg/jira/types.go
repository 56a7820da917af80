package jira

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a time that Jira accepts as an ISO-8601 string. Marshalling
// always emits RFC3339; unmarshalling also tolerates zone-less values such as
// "2020-09-09T04:04:02.257", which are read as UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var timeStr string
	if err := json.Unmarshal(data, &timeStr); err != nil {
		return err
	}

	if timeStr == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, format := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(format, timeStr); err == nil {
			t.Time = parsed
			return nil
		}
	}

	// Zone-less, with or without fractional seconds
	base, _, _ := strings.Cut(timeStr, ".")
	if parsed, err := time.Parse("2006-01-02T15:04:05", base); err == nil {
		t.Time = parsed
		return nil
	}

	return fmt.Errorf("unable to parse time string: %s", timeStr)
}

// MarshalJSON implements json.Marshaler for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// ProviderMetadata identifies the CI/CD tool reporting the data.
type ProviderMetadata struct {
	Product string `json:"product,omitempty"`
}

// APIError is a single reason Jira gives for rejecting an item.
type APIError struct {
	Message      string `json:"message"`
	ErrorTraceID string `json:"errorTraceId,omitempty"`
}
