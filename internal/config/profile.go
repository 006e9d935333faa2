// Package config loads and validates inspection profiles: small YAML files
// with presentation defaults for the CLI. Profiles never change decoder
// semantics, only what gets rendered and how.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

// Profile is one inspection profile.
type Profile struct {
	// Format is the default output format: text, json, or yaml.
	Format string `json:"format,omitempty"`
	// Pretty enables indented JSON output.
	Pretty bool `json:"pretty,omitempty"`
	// Hash enables whole-file SHA256 computation.
	Hash bool `json:"hash,omitempty"`
	// TreeDepth limits how many directory levels the listing keeps, in every
	// output format.
	// Zero means unlimited (up to the walker's own cap).
	TreeDepth int `json:"treeDepth,omitempty"`
	// Partitions restricts filesystem listings to these partition indexes.
	Partitions []int `json:"partitions,omitempty"`
}

const profileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "format": {
      "type": "string",
      "enum": ["text", "json", "yaml"]
    },
    "pretty": { "type": "boolean" },
    "hash": { "type": "boolean" },
    "treeDepth": {
      "type": "integer",
      "minimum": 0
    },
    "partitions": {
      "type": "array",
      "items": { "type": "integer", "minimum": 1 }
    }
  }
}`

// DefaultProfile returns the profile used when no file is given.
func DefaultProfile() *Profile {
	return &Profile{Format: "text"}
}

// LoadProfile reads a YAML (or JSON) profile file, validates it against the
// embedded schema, and returns the parsed profile.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(raw)
}

// ParseProfile validates and decodes profile bytes.
func ParseProfile(raw []byte) (*Profile, error) {
	jsonBytes, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("profile is not valid YAML: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.schema.json", strings.NewReader(profileSchema)); err != nil {
		return nil, fmt.Errorf("load profile schema: %w", err)
	}
	schema, err := compiler.Compile("profile.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("profile does not match schema: %w", err)
	}

	p := DefaultProfile()
	if err := json.Unmarshal(jsonBytes, p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.Format == "" {
		p.Format = "text"
	}
	return p, nil
}

// WantsPartition reports whether the profile includes partition index idx.
// An empty Partitions list includes everything.
func (p *Profile) WantsPartition(idx int) bool {
	if len(p.Partitions) == 0 {
		return true
	}
	for _, want := range p.Partitions {
		if want == idx {
			return true
		}
	}
	return false
}
