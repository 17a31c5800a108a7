package macro

import (
	"encoding/json"
	"time"
)

// ParseTime parses the RFC3339 form used throughout the document.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// Timestamp wraps time.Time with the document's string encoding. The
// zero value marshals to an empty string rather than the zero RFC3339
// instant.
type Timestamp struct {
	time.Time
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(raw)
	return err
}

// MarshalText allows Timestamp to be used as an XML element value.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the same forms as UnmarshalJSON.
func (t *Timestamp) UnmarshalText(b []byte) error {
	raw := string(b)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(raw)
	return err
}
