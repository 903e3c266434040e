package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
)

// MustLoadRegistry loads every schema document under dir into a registry.
func MustLoadRegistry(t *testing.T, dir string) *schema.Registry {
	t.Helper()

	registry, err := schema.LoadFS(os.DirFS(dir))
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return registry
}

// MustLoadSchema reads a single JSON form schema fixture.
func MustLoadSchema(t *testing.T, path string) model.FormSchema {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var out model.FormSchema
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("invalid schema fixture %s: %v", path, err)
	}
	return out
}

// MustBuffer parses raw values against form, failing the test on any value the
// field kinds reject.
func MustBuffer(t *testing.T, form model.FormSchema, raw map[string]string) model.Buffer {
	t.Helper()

	buffer := make(model.Buffer, len(raw))
	for name, value := range raw {
		field, ok := form.Field(name)
		if !ok {
			t.Fatalf("buffer: %s has no field %q", form.Name, name)
		}
		parsed, err := model.ParseValue(field, value)
		if err != nil {
			t.Fatalf("buffer: %v", err)
		}
		buffer[name] = parsed
	}
	return buffer
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// AssertGolden compares got with the golden file at path, rewriting the file
// first when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := CompareGolden(want, string(got)); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// Fixture joins path segments under the caller's testdata directory.
func Fixture(parts ...string) string {
	return filepath.Join(append([]string{"testdata"}, parts...)...)
}

