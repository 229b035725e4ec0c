package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var schemaJSON []byte

const schemaURL = "https://qaforge.local/catalog.schema.json"

//nolint:gochecknoglobals // compiled once, read-only afterwards
var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	errSchema      error
)

// Default returns the built-in catalog of 106 e-commerce scenarios.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Load reads a catalog YAML file from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from user config
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return c, nil
}

// Parse decodes a catalog document. Axis order is taken from the document
// itself, so the YAML is walked as nodes rather than decoded into maps.
func Parse(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfiguration, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty catalog document", errors.ErrConfiguration)
	}
	doc := root.Content[0]

	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var (
		global    domain.Axes
		scenarios []domain.ScenarioDefinition
	)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, resolve(doc.Content[i+1])
		switch key {
		case "global_parameters":
			axes, err := decodeAxes(value)
			if err != nil {
				return nil, errors.Wrap(err, "global_parameters")
			}
			global = axes
		case "scenarios":
			defs, err := decodeScenarios(value)
			if err != nil {
				return nil, err
			}
			scenarios = defs
		}
	}

	return New(global, scenarios)
}

func decodeScenarios(node *yaml.Node) ([]domain.ScenarioDefinition, error) {
	defs := make([]domain.ScenarioDefinition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		def := domain.ScenarioDefinition{ID: node.Content[i].Value}
		body := resolve(node.Content[i+1])
		for j := 0; j+1 < len(body.Content); j += 2 {
			field, value := body.Content[j].Value, resolve(body.Content[j+1])
			switch field {
			case "title":
				def.Title = value.Value
			case "parameters":
				axes, err := decodeAxes(value)
				if err != nil {
					return nil, errors.Wrapf(err, "scenario %s", def.ID)
				}
				def.Parameters = axes
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// decodeAxes keeps the mapping order of the node.
func decodeAxes(node *yaml.Node) (domain.Axes, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: parameters must be a mapping", errors.ErrConfiguration)
	}
	axes := make(domain.Axes, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		seq := resolve(node.Content[i+1])
		values := make([]string, 0, len(seq.Content))
		for _, item := range seq.Content {
			values = append(values, resolve(item).Value)
		}
		axes = append(axes, domain.Axis{Name: name, Values: values})
	}
	return axes, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// toJSONValue converts a node tree into the generic shape the schema
// validator expects. Scalars are kept as their literal text, so unquoted
// numbers in value lists are accepted as strings.
func toJSONValue(node *yaml.Node) any {
	node = resolve(node)
	switch node.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			m[node.Content[i].Value] = toJSONValue(node.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			s = append(s, toJSONValue(item))
		}
		return s
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return node.Value
	default:
		return nil
	}
}

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			errSchema = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, errSchema = compiler.Compile(schemaURL)
	})
	return compiledSchema, errSchema
}

func validateSchema(doc *yaml.Node) error {
	schema, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(toJSONValue(doc)); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfiguration, err)
	}
	return nil
}
