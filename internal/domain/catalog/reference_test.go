package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Reference
	}{
		{"null", `null`, Reference{}},
		{"empty", ``, Reference{}},
		{"number", `12`, Reference{Kind: ReferenceID, ID: 12}},
		{"numeric string", `"12"`, Reference{Kind: ReferenceID, ID: 12}},
		{"name string", `"Fenty Beauty"`, Reference{Kind: ReferenceInline, Name: "Fenty Beauty"}},
		{"object", `{"id": 3, "name": "Lips"}`, Reference{Kind: ReferenceInline, ID: 3, Name: "Lips"}},
		{"object without name", `{"id": 3}`, Reference{Kind: ReferenceID, ID: 3}},
		{"object with string id", `{"id": "4", "name": "Eyes"}`, Reference{Kind: ReferenceInline, ID: 4, Name: "Eyes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects arrays", func(t *testing.T) {
		_, err := ParseReference([]byte(`[1]`))
		assert.Error(t, err)
	})
}

func TestReference_JSON(t *testing.T) {
	t.Run("payload decode normalizes every shape", func(t *testing.T) {
		var payloads []ProductPayload
		raw := `[
			{"id": 1, "name": "Lipstick", "brand": 5, "category": {"id": 2, "name": "Lips"}},
			{"id": 2, "name": "Mascara", "brand": "Maybelline", "category": null, "is_active": false}
		]`
		require.NoError(t, json.Unmarshal([]byte(raw), &payloads))

		first := payloads[0].ToProduct()
		assert.Equal(t, IDRef(5), first.Brand)
		assert.Equal(t, "Lips", first.Category.DisplayName())
		assert.True(t, first.IsActive)

		second := payloads[1].ToProduct()
		assert.Equal(t, "Maybelline", second.Brand.DisplayName())
		assert.True(t, second.Category.IsZero())
		assert.False(t, second.IsActive)
	})

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(Product{ID: 1, Brand: IDRef(5), Category: InlineRef(2, "Lips")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"name":"","brand":5,"category":{"id":2,"name":"Lips"},"is_active":false}`, string(data))
	})

	t.Run("display name of id reference", func(t *testing.T) {
		assert.Equal(t, "#5", IDRef(5).DisplayName())
		assert.Equal(t, "", Reference{}.DisplayName())
	})
}
