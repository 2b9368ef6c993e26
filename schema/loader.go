package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type document struct {
	Models []*Schema `yaml:"models"`
}

// LoadFile reads a YAML schema document from path.
func LoadFile(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Load reads a YAML schema document from r.
func Load(r io.Reader) ([]*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a document of the form
//
//	models:
//	  - name: Person
//	    fields:
//	      - {name: PersonId, type: int, primaryKey: true}
//	    relations:
//	      - {name: Company, type: manyToOne, model: Company, foreignKey: CompanyId}
//
// Models without a table get the default pluralized snake_case name.
func Parse(data []byte) ([]*Schema, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	byName := make(map[string]*Schema, len(doc.Models))
	var errs []error
	for _, s := range doc.Models {
		if s.TableName == "" && s.Name != "" {
			s.TableName = ModelNameToTableName(s.Name)
		}
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := byName[s.Name]; dup {
			errs = append(errs, fmt.Errorf("model %s declared twice", s.Name))
			continue
		}
		byName[s.Name] = s
	}
	for _, s := range doc.Models {
		if byName[s.Name] != s {
			continue
		}
		if err := s.ValidateRelations(byName); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return doc.Models, nil
}
