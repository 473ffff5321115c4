package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds the schemas known to the server, keyed by uid. Content
// types and components live in the same namespace, as they do in the CMS.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry returns a registry holding the given schemas. Schemas without
// a uid are ignored.
func NewRegistry(schemas ...*Schema) *Registry {
	r := &Registry{schemas: make(map[string]*Schema)}
	for _, s := range schemas {
		if s != nil && s.UID != "" {
			r.schemas[s.UID] = s
		}
	}
	return r
}

// LoadDir reads every *.json file under dir (recursively) as a Schema.
// Each file must carry a uid.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		s, err := ParseFile(path)
		if err != nil {
			return err
		}
		if s.UID == "" {
			return fmt.Errorf("%s: schema has no uid", path)
		}
		r.schemas[s.UID] = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading schemas from %s: %w", dir, err)
	}
	return r, nil
}

// ParseFile reads and parses a schema JSON file.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse parses schema JSON data.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return &s, nil
}

// Lookup returns the schema registered under uid.
func (r *Registry) Lookup(uid string) (*Schema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.schemas[uid]
	return s, ok
}

// Components returns every registered schema as a component map.
func (r *Registry) Components() Components {
	if r == nil {
		return nil
	}
	out := make(Components, len(r.schemas))
	for uid, s := range r.schemas {
		out[uid] = s
	}
	return out
}

// UIDs returns the registered uids in sorted order.
func (r *Registry) UIDs() []string {
	if r == nil {
		return nil
	}
	uids := make([]string, 0, len(r.schemas))
	for uid := range r.schemas {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}
