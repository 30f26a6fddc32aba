// Package web holds static assets compiled into the schemad binary.
package web

import _ "embed"

// OpenAPI is the API description served at /docs/openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
