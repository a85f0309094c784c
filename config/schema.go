package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/tabstreams/errors"
)

// configSchema is the JSON Schema every config file layer must satisfy.
// It checks shape and types only; cross-field rules live in Config.Validate.
const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"version": {"type": "string"},
		"service_id": {"type": "string", "minLength": 1},
		"nats": {
			"type": "object",
			"properties": {
				"urls": {"type": "array", "items": {"type": "string"}, "minItems": 1},
				"max_reconnects": {"type": "integer"},
				"reconnect_wait": {"type": ["string", "integer"]},
				"username": {"type": "string"},
				"password": {"type": "string"},
				"token": {"type": "string"}
			},
			"additionalProperties": false
		},
		"metrics": {
			"type": "object",
			"properties": {
				"enabled": {"type": "boolean"},
				"port": {"type": "integer", "minimum": 0, "maximum": 65535},
				"path": {"type": "string"}
			},
			"additionalProperties": false
		},
		"logging": {
			"type": "object",
			"properties": {
				"level": {"enum": ["debug", "info", "warn", "error"]},
				"format": {"enum": ["text", "json"]}
			},
			"additionalProperties": false
		},
		"components": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"type": {"type": "string", "minLength": 1},
					"enabled": {"type": "boolean"},
					"config": {"type": "object"}
				},
				"required": ["type"],
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

// validateSchema checks raw config file bytes against the config schema.
func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "validateSchema", "run schema validation")
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.WrapInvalid(
		fmt.Errorf("config schema violation: %s", strings.Join(details, "; ")),
		"Loader", "validateSchema", "check config shape")
}
