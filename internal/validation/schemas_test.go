package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator(t *testing.T) {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)
	assert.Equal(t, []string{SchemaCompare, SchemaRating, SchemaTag}, sv.AvailableSchemas())

	tests := []struct {
		name   string
		schema string
		body   string
		valid  bool
		field  string
	}{
		{name: "rating", schema: SchemaRating, body: `{"userId": 1, "movieId": 2, "rating": 3.5}`, valid: true},
		{name: "rating off the half-star scale", schema: SchemaRating, body: `{"userId": 1, "movieId": 2, "rating": 3.3}`, field: "rating"},
		{name: "rating too high", schema: SchemaRating, body: `{"userId": 1, "movieId": 2, "rating": 5.5}`, field: "rating"},
		{name: "rating missing movie", schema: SchemaRating, body: `{"userId": 1, "rating": 3}`, field: "(root)"},
		{name: "rating unknown field", schema: SchemaRating, body: `{"userId": 1, "movieId": 2, "rating": 3, "x": 1}`, field: "(root)"},
		{name: "compare", schema: SchemaCompare, body: `{"userId": 1}`, valid: true},
		{name: "compare with anchor", schema: SchemaCompare, body: `{"userId": 1, "movieId": 3, "n": 50}`, valid: true},
		{name: "compare null anchor", schema: SchemaCompare, body: `{"userId": 1, "movieId": null}`, valid: true},
		{name: "compare n too large", schema: SchemaCompare, body: `{"userId": 1, "n": 51}`, field: "n"},
		{name: "tag", schema: SchemaTag, body: `{"userId": 1, "movieId": 2, "tag": "dark comedy"}`, valid: true},
		{name: "blank tag", schema: SchemaTag, body: `{"userId": 1, "movieId": 2, "tag": "   "}`, field: "tag"},
		{name: "tag missing user", schema: SchemaTag, body: `{"movieId": 2, "tag": "x"}`, field: "(root)"},
		{name: "compare string user", schema: SchemaCompare, body: `{"userId": "1"}`, field: "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.Validate(tt.schema, tt.body)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Nil(t, result.ToAPIError())
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.NotNil(t, result.ToAPIError()["error"])
		})
	}

	t.Run("unknown schema", func(t *testing.T) {
		result := sv.Validate("nope", `{}`)
		assert.False(t, result.Valid)
		assert.Equal(t, "SCHEMA_NOT_FOUND", result.Errors[0].Code)
	})

	t.Run("struct input", func(t *testing.T) {
		result := sv.Validate(SchemaCompare, map[string]int{"userId": 4})
		assert.True(t, result.Valid)
	})
}
