// Package utils holds small cross-cutting helpers shared by the CLI and
// engine packages.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects a JSON schema for any value without the
// custom type mapping engine.Config needs for optional.Option and
// commission.Broker fields; it is used for plain record types like
// types.Results.
func GetSchemaFromConfig(config any) (string, error) {
	schema := jsonschema.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
