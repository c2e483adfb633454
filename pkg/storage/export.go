package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"tidu/pkg/task"
)

// ExportVersion identifies the envelope layout. Bump only with a migration
// path for older exports.
const ExportVersion = "1.0"

// Envelope is the versioned wrapper written by Export and required by
// Import. The field names are the interchange format with previously
// exported data and must not change.
type Envelope struct {
	Version    string       `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	Data       EnvelopeData `json:"data"`
}

// EnvelopeData carries the exported collection and settings.
type EnvelopeData struct {
	Tasks    []task.Record  `json:"tasks"`
	Settings map[string]any `json:"settings"`
	Metadata Metadata       `json:"metadata"`
}

// Metadata describes the export itself.
type Metadata struct {
	TaskCount  int    `json:"taskCount"`
	App        string `json:"app"`
	AppVersion string `json:"appVersion"`
}

// envelopeSchema is the validation contract for imported files: a data.tasks
// array whose every element has a non-empty id and a string text.
const envelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "data"],
  "properties": {
    "version": {"type": "string"},
    "exportDate": {"type": "string"},
    "data": {
      "type": "object",
      "required": ["tasks"],
      "properties": {
        "tasks": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "text"],
            "properties": {
              "id": {"type": "string", "minLength": 1},
              "text": {"type": "string"}
            }
          }
        },
        "settings": {"type": "object"}
      }
    }
  }
}`

// Export writes tasks and settings to path inside the versioned envelope.
func Export(path string, appVersion string, records []task.Record, settings map[string]any) error {
	if records == nil {
		records = []task.Record{}
	}
	if settings == nil {
		settings = map[string]any{}
	}
	env := Envelope{
		Version:    ExportVersion,
		ExportDate: time.Now().UTC(),
		Data: EnvelopeData{
			Tasks:    records,
			Settings: settings,
			Metadata: Metadata{
				TaskCount:  len(records),
				App:        "tidu",
				AppVersion: appVersion,
			},
		},
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export envelope: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// Import reads an export file, validates the envelope against the schema and
// returns its data section. This is a one-shot read that completes before
// any collection state is touched.
func Import(path string) (*EnvelopeData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("import file is not valid JSON: %w", err)
	}

	schema, err := compileEnvelopeSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("import file is not a valid export envelope: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode export envelope: %w", err)
	}
	if env.Data.Tasks == nil {
		env.Data.Tasks = []task.Record{}
	}
	if env.Data.Settings == nil {
		env.Data.Settings = map[string]any{}
	}
	return &env.Data, nil
}

func compileEnvelopeSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envelope.json", strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("failed to add envelope schema: %w", err)
	}
	schema, err := compiler.Compile("envelope.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile envelope schema: %w", err)
	}
	return schema, nil
}
