package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

const itemObjectSchemaURL = "https://schema.autobot.tf/item-object.json"

// itemObjectSchema constrains POSTed item objects. Every field is optional;
// a missing or null defindex/quality leaves the item unresolved.
const itemObjectSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "defindex":      {"type": ["integer", "null"], "minimum": 0},
    "quality":       {"type": ["integer", "null"], "minimum": 0},
    "craftable":     {"type": "boolean"},
    "tradable":      {"type": "boolean"},
    "killstreak":    {"type": "integer", "minimum": 0, "maximum": 3},
    "australium":    {"type": "boolean"},
    "effect":        {"type": ["integer", "null"]},
    "festive":       {"type": "boolean"},
    "paintkit":      {"type": ["integer", "null"]},
    "wear":          {"type": ["integer", "null"], "minimum": 1, "maximum": 5},
    "quality2":      {"type": ["integer", "null"]},
    "craftnumber":   {"type": ["integer", "null"]},
    "crateseries":   {"type": ["integer", "null"]},
    "target":        {"type": ["integer", "null"]},
    "output":        {"type": ["integer", "null"]},
    "outputQuality": {"type": ["integer", "null"]},
    "paint":         {"type": ["integer", "null"]}
  }
}`

// itemValidator checks request bodies against itemObjectSchema.
type itemValidator struct {
	schema *jsonschema.Schema
}

func newItemValidator() (*itemValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(itemObjectSchema))
	if err != nil {
		return nil, fmt.Errorf("decode item object schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(itemObjectSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add item object schema: %w", err)
	}
	sch, err := c.Compile(itemObjectSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile item object schema: %w", err)
	}
	return &itemValidator{schema: sch}, nil
}

// decode validates data and converts it to a sku.Item.
func (v *itemValidator) decode(data []byte) (sku.Item, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return sku.Item{}, badRequest("body of item object is not valid JSON")
	}
	if err := v.schema.Validate(inst); err != nil {
		return sku.Item{}, badRequest("body of item object is invalid: %v", firstLine(err.Error()))
	}
	var item sku.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return sku.Item{}, badRequest("body of item object: %v", err)
	}
	return item, nil
}

// firstLine trims the multi-line validation report to its headline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
