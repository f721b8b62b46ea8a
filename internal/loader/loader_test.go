package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/schema"
)

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forms.yaml")
	if err := os.WriteFile(path, []byte("forms: []\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := New(schema.NewLoaderOptions())
	doc, err := l.Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff("forms: []\n", string(doc.Raw())); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if doc.Ext() != "yaml" {
		t.Fatalf("expected yaml extension, got %q", doc.Ext())
	}
}

func TestLoader_LoadFS(t *testing.T) {
	files := fstest.MapFS{
		"catalog/forms.json": {Data: []byte(`{"forms":[]}`)},
	}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), schema.SourceFromFS("catalog/forms.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := string(doc.Raw()); got != `{"forms":[]}` {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestLoader_FSNotConfigured(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	_, err := l.Load(context.Background(), schema.SourceFromFS("forms.json"))
	if err == nil || !strings.Contains(err.Error(), "filesystem is not configured") {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

func TestLoader_HTTPDisabledByDefault(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	_, err := l.Load(context.Background(), schema.SourceFromURL("https://example.com/forms.json"))
	if err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}
}

func TestLoader_LoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"forms":[]}`))
	}))
	defer srv.Close()

	l := New(schema.NewLoaderOptions(schema.WithHTTPClient(srv.Client()), schema.WithHTTPFallback(time.Second)))

	doc, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/forms.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := string(doc.Raw()); got != `{"forms":[]}` {
		t.Fatalf("unexpected payload %q", got)
	}

	_, err = l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/missing.json"))
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoader_HTTPRejectsOversizedDocument(t *testing.T) {
	const limit = 64
	catalog := "forms:\n  - id: f1\n    fields:\n      - name: consent\n        mandatory: true\n"
	if len(catalog) <= limit {
		t.Fatalf("fixture must exceed the limit, got %d bytes", len(catalog))
	}

	cases := map[string]func(w http.ResponseWriter){
		"declared length": func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(catalog))
		},
		"chunked": func(w http.ResponseWriter) {
			flusher, _ := w.(http.Flusher)
			for _, line := range strings.SplitAfter(catalog, "\n") {
				_, _ = w.Write([]byte(line))
				if flusher != nil {
					flusher.Flush()
				}
			}
		},
	}

	for name, write := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				write(w)
			}))
			defer srv.Close()

			l := New(schema.NewLoaderOptions(
				schema.WithHTTPClient(srv.Client()),
				schema.WithMaxDocumentBytes(limit),
			))
			doc, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/forms.yaml"))
			if !errors.Is(err, ErrDocumentTooLarge) {
				t.Fatalf("expected ErrDocumentTooLarge, got doc=%d bytes err=%v", len(doc.Raw()), err)
			}
		})
	}
}

func TestLoader_HTTPAcceptsDocumentAtLimit(t *testing.T) {
	payload := strings.Repeat("x", 32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	l := New(schema.NewLoaderOptions(
		schema.WithHTTPClient(srv.Client()),
		schema.WithMaxDocumentBytes(int64(len(payload))),
	))
	doc, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/forms.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(payload, string(doc.Raw())); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_LogsEachSource(t *testing.T) {
	var out bytes.Buffer
	cfg := logger.TestConfig()
	cfg.Level = logger.DebugLevel
	cfg.Output = &out
	ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(cfg))

	files := fstest.MapFS{"forms.yaml": {Data: []byte("forms: []\n")}}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	if _, err := l.Load(ctx, schema.SourceFromFS("forms.yaml")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := l.Load(ctx, schema.SourceFromFS("absent.yaml")); err == nil {
		t.Fatal("expected error for absent source")
	}

	logged := out.String()
	for _, want := range []string{"Catalog source read", "Catalog source unreadable", "forms.yaml", "absent.yaml"} {
		if !strings.Contains(logged, want) {
			t.Fatalf("log output missing %q:\n%s", want, logged)
		}
	}
}
