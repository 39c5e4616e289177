package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want model.Lead
	}{
		{
			name: "webhook keys",
			raw: map[string]any{
				"businessName": "Blue Bottle",
				"location":     "300 Webster St",
				"phone_number": "+1 510 555 0100",
				"site":         "https://bluebottle.example",
				"Email":        "hello@bluebottle.example",
				"stars":        4.5,
			},
			want: model.Lead{
				Name:    "Blue Bottle",
				Address: "300 Webster St",
				Phone:   "+1 510 555 0100",
				Website: "https://bluebottle.example",
				Email:   "hello@bluebottle.example",
				Rating:  "4.5",
			},
		},
		{
			name: "database row keys",
			raw: map[string]any{
				"business_name":     "Franklin BBQ",
				"formatted_address": "900 E 11th St, Austin",
				"emails":            "orders@franklin.example",
				"score":             "4.8",
			},
			want: model.Lead{
				Name:    "Franklin BBQ",
				Address: "900 E 11th St, Austin",
				Email:   "orders@franklin.example",
				Rating:  "4.8",
			},
		},
		{
			name: "first present non-empty key wins",
			raw: map[string]any{
				"name":         "",
				"businessName": "Victrola Coffee",
				"title":        "shadowed",
				"address":      "310 E Pike St",
				"location":     "shadowed",
			},
			want: model.Lead{Name: "Victrola Coffee", Address: "310 E Pike St"},
		},
		{
			name: "integer rating renders without trailing zeros",
			raw:  map[string]any{"name": "Joe's", "rating": float64(4)},
			want: model.Lead{Name: "Joe's", Rating: "4"},
		},
		{
			name: "non-scalar values resolve empty",
			raw: map[string]any{
				"name":    map[string]any{"nested": true},
				"title":   "Fallback Title",
				"address": []any{"not", "a", "string"},
			},
			want: model.Lead{Name: "Fallback Title"},
		},
		{
			name: "nil map",
			raw:  nil,
			want: model.Lead{},
		},
		{
			name: "empty record",
			raw:  map[string]any{},
			want: model.Lead{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeAllDropsNameless(t *testing.T) {
	records := []map[string]any{
		{"name": "Kept One", "phone": "123"},
		{"address": "nameless row"},
		nil,
		{"title": "Kept Two"},
	}

	leads := NormalizeAll(records)

	assert.Len(t, leads, 2)
	assert.Equal(t, "Kept One", leads[0].Name)
	assert.Equal(t, "Kept Two", leads[1].Name)
}
