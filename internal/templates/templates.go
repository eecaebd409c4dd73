package templates

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/muurk/camprov/internal/codec"
)

// Operation names understood by the default template set.
const (
	Auth           = "auth"
	Logout         = "exit"
	DeviceID       = "cameraId"
	TimeServer     = "ntp"
	AdminUser      = "userAdmin"
	DeleteRtspUser = "deleteUserRtsp"
	RtspUser       = "userRtsp"
)

// DefaultContentType is used when a template does not name one
const DefaultContentType = "application/json"

const (
	dataPath    = "data"
	payloadPath = "payload"
)

//go:embed templates.json
var defaultTemplates []byte

// ErrUnknownTemplate is returned by Store.Get for names not in the store
var ErrUnknownTemplate = errors.New("unknown request template")

// Template is one operation's request blueprint.
type Template struct {
	Name        string          `json:"-"`
	ContentType string          `json:"contentType,omitempty"`
	Body        json.RawMessage `json:"body"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	body := make(json.RawMessage, len(t.Body))
	copy(body, t.Body)
	t.Body = body
	return t
}

// DataField reads a field of the inner data document.
func (t Template) DataField(field string) gjson.Result {
	data := gjson.GetBytes(t.Body, dataPath)
	if data.Type == gjson.String {
		return gjson.Get(data.Str, field)
	}
	return data.Get(field)
}

// SetDataField sets field inside the inner data document. The data document
// may be either a JSON-encoded string (the firmware's format) or a plain
// object.
func (t *Template) SetDataField(field string, value any) error {
	data := gjson.GetBytes(t.Body, dataPath)

	switch {
	case data.Type == gjson.String:
		if !gjson.Valid(data.Str) {
			return fmt.Errorf("template %s: data is not a JSON document", t.Name)
		}
		inner, err := sjson.Set(data.Str, field, value)
		if err != nil {
			return fmt.Errorf("template %s: failed to set data.%s: %w", t.Name, field, err)
		}
		body, err := sjson.SetBytes(t.Body, dataPath, inner)
		if err != nil {
			return fmt.Errorf("template %s: failed to replace data: %w", t.Name, err)
		}
		t.Body = body

	case data.IsObject():
		body, err := sjson.SetBytes(t.Body, dataPath+"."+field, value)
		if err != nil {
			return fmt.Errorf("template %s: failed to set data.%s: %w", t.Name, field, err)
		}
		t.Body = body

	default:
		return fmt.Errorf("template %s: missing data document", t.Name)
	}

	return nil
}

// SetPayloadField decodes the base64 settings blob at data.payload, sets
// field to value on it and writes the re-encoded blob back. Decode failures
// are returned as *codec.DecodeError.
func (t *Template) SetPayloadField(field string, value any) error {
	payload := t.DataField(payloadPath)
	if !payload.Exists() {
		return fmt.Errorf("template %s: no %s field in data", t.Name, payloadPath)
	}

	settings, err := codec.DecodeJSON(payload.String())
	if err != nil {
		return err
	}
	settings[field] = value

	blob, err := codec.EncodeJSON(settings)
	if err != nil {
		return err
	}
	return t.SetDataField(payloadPath, blob)
}

// Store is a read-only set of templates keyed by operation name.
type Store struct {
	templates map[string]Template
}

// Default returns the embedded template set.
func Default() (*Store, error) {
	return Parse(defaultTemplates)
}

// Load reads a template file. An empty path loads the embedded defaults.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	store, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Parse builds a store from a JSON document mapping operation names to
// templates.
func Parse(data []byte) (*Store, error) {
	var raw map[string]Template
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	store := &Store{templates: make(map[string]Template, len(raw))}
	for name, tmpl := range raw {
		if !gjson.ValidBytes(tmpl.Body) || !gjson.ParseBytes(tmpl.Body).IsObject() {
			return nil, fmt.Errorf("template %s: body must be a JSON object", name)
		}
		tmpl.Name = name
		if tmpl.ContentType == "" {
			tmpl.ContentType = DefaultContentType
		}
		store.templates[name] = tmpl
	}

	return store, nil
}

// Get returns a private copy of the named template.
func (s *Store) Get(name string) (Template, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return tmpl.Clone(), nil
}

// Require checks that every named template is present.
func (s *Store) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := s.templates[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownTemplate, missing)
	}
	return nil
}

// Names returns the template names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Redacted returns a copy with credentials and passwords masked, for display.
func (t Template) Redacted() Template {
	out := t.Clone()
	for _, field := range []string{"credentials", "password"} {
		if v := out.DataField(field); v.Exists() && v.String() != "" {
			_ = out.SetDataField(field, "********")
		}
	}
	return out
}
