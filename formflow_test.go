package formflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const contactForm = `{
  "id": "contact",
  "title": "Contact",
  "fields": [
    {"id": "name", "type": "short-text", "label": "Name", "required": true},
    {"id": "email", "type": "email", "label": "Email", "required": true}
  ]
}`

func TestLoadFormFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"forms/contact.json": &fstest.MapFile{Data: []byte(contactForm)},
	}

	form, err := LoadForm(context.Background(), schema.SourceFromFS("forms/contact.json"), schema.WithFileSystem(fsys))
	if err != nil {
		t.Fatalf("LoadForm() error = %v", err)
	}
	if form.ID != "contact" {
		t.Fatalf("form.ID = %q, want %q", form.ID, "contact")
	}
	if len(form.Fields) != 2 {
		t.Fatalf("len(form.Fields) = %d, want 2", len(form.Fields))
	}
}

func TestStartSessionFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contact.json")
	if err := os.WriteFile(path, []byte(contactForm), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sess, err := StartSession(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sess.ScopeCount() != 2 {
		t.Fatalf("ScopeCount() = %d, want 2 (one question per step)", sess.ScopeCount())
	}
}
