package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_Valid(t *testing.T) {
	schema, err := ValidateSchema([]byte(validSchemaJSON))
	require.NoError(t, err)

	assert.Equal(t, "read", schema.Name)
	assert.Equal(t, "Read a file from disk", schema.Description)
	assert.Equal(t, "object", schema.Parameters["type"])
}

func TestValidateSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "def main(): pass"},
		{"empty", ""},
		{"json array", `[1, 2, 3]`},
		{"missing name", `{"description": "d", "parameters": {"type": "object"}}`},
		{"missing description", `{"name": "n", "parameters": {"type": "object"}}`},
		{"missing parameters", `{"name": "n", "description": "d"}`},
		{"parameters not object-typed", `{"name": "n", "description": "d", "parameters": {"type": "string"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSchema([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
