package metadata

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// AppMetadata is the open-ended document stored on every Version.
//
// Known fields are typed. Anything else in the stored JSON is kept in Extra
// and written back unchanged, so read-modify-write cycles never drop fields
// added by newer clients. Known keys that were present with an empty value
// ("", false, [], {}, null) are also remembered in Extra; they are written
// back only while the typed field stays empty.
type AppMetadata struct {
	Name        string               `json:"name,omitempty"`
	Description string               `json:"description,omitempty"`
	Version     string               `json:"version,omitempty"`
	Author      string               `json:"author,omitempty"`
	Badges      []string             `json:"badges,omitempty"`
	Categories  []string             `json:"categories,omitempty"`
	IconMap     map[string]string    `json:"icon_map,omitempty"`
	Application []ApplicationVariant `json:"application,omitempty"`
	LicenseFile string               `json:"license_file,omitempty"`
	LicenseType string               `json:"license_type,omitempty"`
	Hidden      bool                 `json:"hidden,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var appMetadataKeys = []string{
	"name", "description", "version", "author", "badges", "categories",
	"icon_map", "application", "license_file", "license_type", "hidden",
}

// ApplicationVariant describes one runnable build of the app.
type ApplicationVariant struct {
	Badge          string `json:"badge,omitempty"`
	Executable     string `json:"executable,omitempty"`
	MainExecutable string `json:"main_executable,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var applicationVariantKeys = []string{"badge", "executable", "main_executable"}

// MarshalJSON implements json.Marshaler.
func (m AppMetadata) MarshalJSON() ([]byte, error) {
	type plain AppMetadata
	return marshalWithExtra(plain(m), m.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *AppMetadata) UnmarshalJSON(data []byte) error {
	type plain AppMetadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := collectExtra(data, appMetadataKeys)
	if err != nil {
		return err
	}
	*m = AppMetadata(p)
	m.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v ApplicationVariant) MarshalJSON() ([]byte, error) {
	type plain ApplicationVariant
	return marshalWithExtra(plain(v), v.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ApplicationVariant) UnmarshalJSON(data []byte) error {
	type plain ApplicationVariant
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := collectExtra(data, applicationVariantKeys)
	if err != nil {
		return err
	}
	*v = ApplicationVariant(p)
	v.Extra = extra
	return nil
}

// DisplayName returns Name, or fallback when the name is empty.
func (m AppMetadata) DisplayName(fallback string) string {
	if m.Name == "" {
		return fallback
	}
	return m.Name
}

// Clone returns a deep copy.
func (m AppMetadata) Clone() AppMetadata {
	out := m
	out.Badges = slices.Clone(m.Badges)
	out.Categories = slices.Clone(m.Categories)
	out.IconMap = maps.Clone(m.IconMap)
	out.Extra = cloneExtra(m.Extra)
	if m.Application != nil {
		out.Application = make([]ApplicationVariant, len(m.Application))
		for i, v := range m.Application {
			v.Extra = cloneExtra(v.Extra)
			out.Application[i] = v
		}
	}
	return out
}

// marshalWithExtra encodes known and splices the extra keys into the object.
// Known fields win on key collisions.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func collectExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range known {
		if raw, ok := fields[k]; ok && !isEmptyJSON(raw) {
			delete(fields, k)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case `""`, "false", "[]", "{}", "null":
		return true
	}
	return false
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
