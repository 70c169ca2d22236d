// Where: internal/generator/validator.go
// What: Schema validator for adapter configuration files.
// Why: Catch malformed configuration before any declaration is built.
package generator

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

//go:embed schema/config.schema.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// ValidateConfig checks a YAML configuration document against the embedded
// schema and returns its JSON form on success.
func ValidateConfig(content []byte) ([]byte, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	if err := sch.Validate(document); err != nil {
		return nil, err
	}
	return jsonData, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schema/config.schema.json")
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("config.schema.json", bytes.NewReader(raw)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("config.schema.json")
	})
	return compiledSchema, schemaErr
}
