package web

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestOpenAPIDocument(t *testing.T) {
	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(OpenAPI, &doc); err != nil {
		t.Fatalf("parse openapi.yaml: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Error("missing openapi version")
	}

	tests := []struct {
		path   string
		method string
	}{
		{"/schema", "get"},
		{"/schema/download", "get"},
		{"/schema/refresh", "patch"},
		{"/properties/craftWeaponsByClass/{classChar}", "get"},
		{"/getName/fromItemObject", "post"},
		{"/getSku/fromName", "post"},
		{"/getItemObject/fromSku", "post"},
		{"/getItem/fromDefindex", "post"},
		{"/raw/schema/{key}", "get"},
		{"/raw/items_game/{key}", "get"},
	}
	for _, tt := range tests {
		if _, ok := doc.Paths[tt.path][tt.method]; !ok {
			t.Errorf("%s %s is not documented", tt.method, tt.path)
		}
	}
}
