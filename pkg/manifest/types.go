package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Wire names of the descriptor fields. They are case-sensitive; "categorys"
// is the established spelling used by every published manifest.
const (
	FieldServerAddress = "server-address"
	FieldPrettyName    = "pretty-name"
	FieldCategories    = "categorys"
	FieldAssets        = "assets"
)

// DefaultFileName is the descriptor file looked up in each server directory.
const DefaultFileName = "manifest.json"

// Role identifies what an asset is used for.
type Role string

const (
	RoleIcon       Role = "icon"
	RoleBackground Role = "background"
)

// Roles returns the known asset roles in processing order.
func Roles() []Role {
	return []Role{RoleIcon, RoleBackground}
}

// AssetReference points at an image asset. RelativePath is rewritten in place
// when the asset is rehomed; Resolved is only populated by callers that have
// located the file on disk.
type AssetReference struct {
	Role         Role
	RelativePath string
	Resolved     string
}

// ServerManifest is one parsed descriptor. Fields other than the mandatory
// ones are kept verbatim in Extra so they survive a merge unchanged.
type ServerManifest struct {
	ServerAddress []string
	PrettyName    string
	Categories    []string

	// Assets is nil when the descriptor has no assets object.
	Assets map[Role]*AssetReference
	// AssetsExtra holds unknown keys of the assets object.
	AssetsExtra map[string]json.RawMessage

	Extra map[string]json.RawMessage
}

// HasAssets reports whether the descriptor declared an assets object.
func (m *ServerManifest) HasAssets() bool {
	return m.Assets != nil
}

// Asset returns the reference for role, or nil.
func (m *ServerManifest) Asset(role Role) *AssetReference {
	if m.Assets == nil {
		return nil
	}
	return m.Assets[role]
}

// Clone returns a shallow copy whose asset references are fresh values, so
// rewriting the copy's paths leaves the original untouched. Passthrough
// raw values are shared; they are never modified.
func (m *ServerManifest) Clone() *ServerManifest {
	out := *m
	out.ServerAddress = append([]string(nil), m.ServerAddress...)
	out.Categories = append([]string(nil), m.Categories...)
	if m.Assets != nil {
		out.Assets = make(map[Role]*AssetReference, len(m.Assets))
		for role, ref := range m.Assets {
			if ref == nil {
				continue
			}
			cp := *ref
			out.Assets[role] = &cp
		}
	}
	return &out
}

// MarshalJSON writes the manifest with keys in sorted order so identical
// inputs always produce identical bytes.
func (m *ServerManifest) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		fields[k] = v
	}
	fields[FieldServerAddress] = nonNil(m.ServerAddress)
	fields[FieldPrettyName] = m.PrettyName
	fields[FieldCategories] = nonNil(m.Categories)
	if m.Assets != nil || m.AssetsExtra != nil {
		assets := make(map[string]any, len(m.Assets)+len(m.AssetsExtra))
		for k, v := range m.AssetsExtra {
			assets[k] = v
		}
		for role, ref := range m.Assets {
			if ref != nil {
				assets[string(role)] = ref.RelativePath
			}
		}
		fields[FieldAssets] = assets
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes without enforcing mandatory fields; Load does that so
// it can report which field is at fault.
func (m *ServerManifest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("descriptor must be a JSON object")
	}
	*m = ServerManifest{Extra: map[string]json.RawMessage{}}

	for k, v := range raw {
		switch k {
		case FieldServerAddress:
			if err := json.Unmarshal(v, &m.ServerAddress); err != nil {
				return &SchemaViolationError{Field: k, Reason: "must be an array of strings"}
			}
		case FieldPrettyName:
			if err := json.Unmarshal(v, &m.PrettyName); err != nil {
				return &SchemaViolationError{Field: k, Reason: "must be a string"}
			}
		case FieldCategories:
			if err := json.Unmarshal(v, &m.Categories); err != nil {
				return &SchemaViolationError{Field: k, Reason: "must be an array of strings"}
			}
		case FieldAssets:
			if err := m.unmarshalAssets(v); err != nil {
				return err
			}
		default:
			m.Extra[k] = v
		}
	}
	return nil
}

func (m *ServerManifest) unmarshalAssets(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		m.Extra[FieldAssets] = data
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &SchemaViolationError{Field: FieldAssets, Reason: "must be an object"}
	}
	m.Assets = map[Role]*AssetReference{}
	for k, v := range raw {
		role := Role(k)
		if role != RoleIcon && role != RoleBackground {
			m.keepAssetExtra(k, v)
			continue
		}
		var p string
		if err := json.Unmarshal(v, &p); err != nil {
			return &SchemaViolationError{Field: FieldAssets + "." + k, Reason: "must be a string path"}
		}
		if p == "" {
			// an empty path declares nothing but is written back as-is
			m.keepAssetExtra(k, v)
			continue
		}
		m.Assets[role] = &AssetReference{Role: role, RelativePath: p}
	}
	return nil
}

func (m *ServerManifest) keepAssetExtra(k string, v json.RawMessage) {
	if m.AssetsExtra == nil {
		m.AssetsExtra = map[string]json.RawMessage{}
	}
	m.AssetsExtra[k] = v
}

// ExtraKeys lists passthrough keys in sorted order.
func (m *ServerManifest) ExtraKeys() []string {
	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
