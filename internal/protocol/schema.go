package protocol

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "claimgrid://schemas/"

var (
	schemaOnce sync.Once
	schemaErr  error
	schemas    map[string]*jsonschema.Schema
)

// SchemaNames lists the embedded message schemas by message type.
var SchemaNames = map[string]string{
	TypeHello:   "hello.schema.json",
	TypeWelcome: "welcome.schema.json",
	TypeInput:   "input.schema.json",
	TypeFrame:   "frame.schema.json",
	TypeError:   "error.schema.json",
}

func loadSchemas() {
	c := jsonschema.NewCompiler()
	for _, name := range SchemaNames {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(schemaBaseURL+name, strings.NewReader(string(raw))); err != nil {
			schemaErr = fmt.Errorf("add %s: %w", name, err)
			return
		}
	}
	out := make(map[string]*jsonschema.Schema, len(SchemaNames))
	for typ, name := range SchemaNames {
		s, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			schemaErr = fmt.Errorf("compile %s: %w", name, err)
			return
		}
		out[typ] = s
	}
	schemas = out
}

// Schema returns the compiled schema for a message type.
func Schema(msgType string) (*jsonschema.Schema, error) {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return nil, schemaErr
	}
	s, ok := schemas[msgType]
	if !ok {
		return nil, fmt.Errorf("no schema for message type %q", msgType)
	}
	return s, nil
}

// Validate checks a raw JSON message against the schema for msgType.
func Validate(msgType string, raw []byte) error {
	s, err := Schema(msgType)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}

// DecodeInput validates and decodes an INPUT message.
func DecodeInput(raw []byte) (InputMsg, error) {
	var m InputMsg
	if err := Validate(TypeInput, raw); err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	return m, nil
}
