// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"errors"
	"testing"

	"mediacatalog/internal/models"
)

func TestMedia(t *testing.T) {
	tests := []struct {
		name      string
		in        models.MediaInput
		want      models.MediaRecord
		wantField string
	}{
		{
			name: "valid without summary",
			in:   models.MediaInput{Title: "X", Image: "i", URL: "u"},
			want: models.MediaRecord{Title: "X", Image: "i", URL: "u", Summary: ""},
		},
		{
			name: "trims every field",
			in:   models.MediaInput{Title: "  Alien ", Image: "\thttp://img\n", URL: " http://v ", Summary: "  scary  "},
			want: models.MediaRecord{Title: "Alien", Image: "http://img", URL: "http://v", Summary: "scary"},
		},
		{name: "empty title", in: models.MediaInput{Image: "i", URL: "u"}, wantField: "title"},
		{name: "whitespace title", in: models.MediaInput{Title: "   ", Image: "i", URL: "u"}, wantField: "title"},
		{name: "missing image", in: models.MediaInput{Title: "X", URL: "u"}, wantField: "image"},
		{name: "missing url", in: models.MediaInput{Title: "X", Image: "i"}, wantField: "url"},
		{name: "first missing wins", in: models.MediaInput{}, wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Media(tt.in)
			if tt.wantField != "" {
				var mf *MissingFieldError
				if !errors.As(err, &mf) {
					t.Fatalf("expected MissingFieldError, got %v", err)
				}
				if mf.Field != tt.wantField {
					t.Errorf("field: got %q, want %q", mf.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestMediaIdempotent verifies that normalizing an already-normalized record
// changes nothing.
func TestMediaIdempotent(t *testing.T) {
	first, err := Media(models.MediaInput{Title: " a ", Image: " b ", URL: " c ", Summary: " d "})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Media(models.MediaInput(first))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second pass changed the record: %+v -> %+v", first, second)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name      string
		in        models.CategoryInput
		want      models.CategoryInput
		wantField string
	}{
		{name: "valid", in: models.CategoryInput{Name: " Anime ", Icon: " 🎌 "}, want: models.CategoryInput{Name: "Anime", Icon: "🎌"}},
		{name: "missing name", in: models.CategoryInput{Icon: "🎌"}, wantField: "name"},
		{name: "missing icon", in: models.CategoryInput{Name: "Anime", Icon: "  "}, wantField: "icon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Category(tt.in)
			if tt.wantField != "" {
				var mf *MissingFieldError
				if !errors.As(err, &mf) || mf.Field != tt.wantField {
					t.Fatalf("expected missing %q, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
