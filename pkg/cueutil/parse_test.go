// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:   string
	count?: int
}
`

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("decodes JSON", func(t *testing.T) {
		t.Parallel()

		res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"name": "alpha", "count": 2}`), "#Doc")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if res.Value.Name != "alpha" || res.Value.Count != 2 {
			t.Errorf("decoded %+v", *res.Value)
		}
	})

	t.Run("tolerates line comments", func(t *testing.T) {
		t.Parallel()

		data := []byte("{\n  // exported by an editor\n  \"name\": \"beta\"\n}\n")
		res, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		if res.Value.Name != "beta" {
			t.Errorf("Name = %q, want beta", res.Value.Name)
		}
	})

	t.Run("type mismatch is a ParseError", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"name": 3}`), "#Doc", WithFilename("doc.json"))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %T (%v)", err, err)
		}
		if pe.Filename != "doc.json" {
			t.Errorf("Filename = %q, want doc.json", pe.Filename)
		}
		if !strings.Contains(err.Error(), "name") {
			t.Errorf("error should mention the field path, got %v", err)
		}
	})

	t.Run("syntax error is a ParseError", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"name": "x",,}`), "#Doc")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %T (%v)", err, err)
		}
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"name": "x"}`), "#Doc", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Fatalf("expected size error, got %v", err)
		}
	})

	t.Run("unknown definition is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`{"name": "x"}`), "#Missing")
		if err == nil {
			t.Fatal("expected error")
		}
		var pe *ParseError
		if errors.As(err, &pe) {
			t.Errorf("schema problems must not be reported as *ParseError: %v", err)
		}
	})
}
