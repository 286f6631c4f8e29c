package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// parseFunctionArguments validates the model's function-call arguments against
// the embedded schema and converts them into results. Items whose id cannot be
// read as an integer are dropped: they can never correlate with a batch item.
func parseFunctionArguments(arguments string) ([]TranslationResult, error) {
	value, err := decodeStrictJSON([]byte(arguments))
	if err != nil {
		return nil, fmt.Errorf("decode function arguments: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize function arguments: %w", err)
	}

	var wire struct {
		Translations []struct {
			ID             any    `json:"id"`
			TranslatedText string `json:"translated_text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(normalized, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal function arguments: %w", err)
	}

	results := make([]TranslationResult, 0, len(wire.Translations))
	for _, item := range wire.Translations {
		id, ok := coerceID(item.ID)
		if !ok {
			continue
		}
		results = append(results, TranslationResult{
			ID:             id,
			TranslatedText: item.TranslatedText,
		})
	}
	return results, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("translations_response.schema.json", strings.NewReader(translationsResponseSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("translations_response.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func coerceID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
