package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DecodeError is returned when a blob is not valid base64, or when the decoded
// bytes are not the JSON object the caller expected.
type DecodeError struct {
	Input string // Offending input (truncated for display)
	Err   error  // Underlying decoder error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode payload %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying decoder error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(input string, err error) *DecodeError {
	if len(input) > 32 {
		input = input[:32] + "..."
	}
	return &DecodeError{Input: input, Err: err}
}

// Encode returns the standard base64 encoding of plain.
func Encode(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// Decode reverses Encode. It returns a *DecodeError if encoded is not valid
// standard base64.
func Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", newDecodeError(encoded, err)
	}
	return string(raw), nil
}

// DecodeJSON decodes a base64 blob holding a JSON object.
func DecodeJSON(encoded string) (map[string]any, error) {
	plain, err := Decode(encoded)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(plain), &obj); err != nil {
		return nil, newDecodeError(encoded, err)
	}
	if obj == nil {
		return nil, newDecodeError(encoded, fmt.Errorf("payload is not a JSON object"))
	}
	return obj, nil
}

// EncodeJSON marshals v and base64-encodes the result.
func EncodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return Encode(string(data)), nil
}
