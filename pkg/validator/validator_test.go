package validator

import (
	"strings"
	"testing"
)

type item struct {
	Text string `json:"text" validate:"required"`
	Lang string `json:"language,omitempty" validate:"omitempty,oneof=primary narrator"`
}

type request struct {
	Items []item `json:"items" validate:"required,min=1,dive"`
	Page  int    `query:"page" validate:"omitempty,min=1"`
}

func TestValidateUsesClientFieldNames(t *testing.T) {
	v := New()

	if err := v.Validate(&request{Items: []item{{Text: "hola"}}}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  request
		want string
	}{
		{"missing items", request{}, "items is required"},
		{"empty text", request{Items: []item{{}}}, "items[0].text is required"},
		{"bad language", request{Items: []item{{Text: "x", Lang: "fr"}}}, "items[0].language must be one of [primary narrator]"},
		{"bad page", request{Items: []item{{Text: "x"}}, Page: -1}, "page must satisfy min=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}
