// Package corpus loads, writes, and runs conformance fixture suites for
// the unitex codec.
//
// A suite is a list of records. Each record names an input expression
// and any of: its tree in Polish form, its expected canonical rendering,
// its dimension vector, or the error it must fail with. JSON is the
// canonical interchange format; YAML is accepted for hand-written
// fixtures.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mensura/unitex/unitex"
)

// Record is one conformance case. Input and Output are both expression
// texts; at least one must be present. Absent fields assert nothing.
type Record struct {
	// Name identifies the record in reports.
	Name string `json:"name" yaml:"name"`

	// Input is the expression under test.
	Input *string `json:"input,omitempty" yaml:"input,omitempty"`

	// AST is the Polish form the parsed input must match.
	AST *string `json:"ast,omitempty" yaml:"ast,omitempty"`

	// Output is the expected canonical rendering. When Input is absent,
	// Output doubles as the expression under test and must render back
	// to itself.
	Output *string `json:"output,omitempty" yaml:"output,omitempty"`

	// Dimensions is the expected dimension vector, "T-2L" style.
	Dimensions *string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// WantError, when set, is a substring the pipeline's error must
	// contain. The record then asserts failure, not success.
	WantError string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Source returns the expression text a record tests.
func (r *Record) Source() string {
	if r.Input != nil {
		return *r.Input
	}
	if r.Output != nil {
		return *r.Output
	}
	return ""
}

// Suite is an ordered list of records.
type Suite struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Records []Record `json:"records" yaml:"records"`
}

// ============================================================
// Loading and writing
// ============================================================

// ParseJSON reads a suite from JSON bytes.
func ParseJSON(data []byte) (*Suite, error) {
	var s Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseYAML reads a suite from YAML bytes.
func ParseYAML(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a suite file, picking the format by extension: .json, .yaml,
// or .yml.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load suite: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("load suite: unknown extension %q", filepath.Ext(path))
	}
}

// WriteJSON writes the suite as indented JSON.
func (s *Suite) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write suite: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write suite: %w", err)
	}
	return nil
}

// validate rejects records that assert nothing testable.
func (s *Suite) validate() error {
	for i, r := range s.Records {
		if r.Input == nil && r.Output == nil {
			return fmt.Errorf("record %s: neither input nor output present", recordLabel(i, &r))
		}
	}
	return nil
}

func recordLabel(i int, r *Record) string {
	if r.Name != "" {
		return fmt.Sprintf("%q", r.Name)
	}
	return fmt.Sprintf("#%d", i)
}

// ============================================================
// Running records through the engine
// ============================================================

// Verify runs one record through parse, canonicalize, and generate, and
// reports the first deviation from what the record asserts. A nil
// mapping skips dimension checks.
func Verify(table *unitex.DefinitionsTable, r *Record, mapping map[string]DimVector) error {
	src := r.Source()

	e, err := unitex.Parse(table, src)
	var cf *unitex.CanonicalForm
	if err == nil {
		cf, err = unitex.Canonicalize(e)
	}

	if r.WantError != "" {
		if err == nil {
			return fmt.Errorf("expected an error containing %q, got none", r.WantError)
		}
		if !strings.Contains(err.Error(), r.WantError) {
			return fmt.Errorf("expected an error containing %q, got %q", r.WantError, err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if r.AST != nil {
		if got := unitex.Polish(e); got != *r.AST {
			return fmt.Errorf("tree mismatch: got %s, want %s", got, *r.AST)
		}
	}

	if r.Output != nil {
		if got := unitex.Generate(e); got != *r.Output {
			return fmt.Errorf("rendering mismatch: got %q, want %q", got, *r.Output)
		}
		if r.Input != nil {
			eq, err := unitex.Equivalent(table, *r.Input, *r.Output)
			if err != nil {
				return err
			}
			if !eq {
				return fmt.Errorf("input and output are not equivalent")
			}
		}
	}

	if r.Dimensions != nil && mapping != nil {
		want, err := ParseDimVector(*r.Dimensions)
		if err != nil {
			return fmt.Errorf("dimensions field: %w", err)
		}
		got, err := DimOf(cf, mapping)
		if err != nil {
			return err
		}
		if !got.Equal(want) {
			return fmt.Errorf("dimension mismatch: got %q, want %q", got, want)
		}
	}

	return nil
}
