package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClassifyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	if err := os.WriteFile(path, []byte(`
forms:
  - id: registration
    fields:
      - name: hasLivestock
        options: ["yes", "no"]
      - name: district
        type: masterdataRef
`), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"classify", "--log-level", "error", "--source", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v\n%s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"registration", "LOV_YES_NO", "hasLivestock", "MASTERDATA", "district"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSubmitCommandRequiresService(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"submit", "--file", "body.json"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "--service") {
		t.Fatalf("expected --service error, got %v", err)
	}
}

func TestSubmitCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "forms.yaml")
	configPath := filepath.Join(dir, "config.yaml")
	bodyPath := filepath.Join(dir, "body.json")

	files := map[string]string{
		catalogPath: `
forms:
  - id: registration
    fields:
      - name: hasLivestock
        mandatory: true
        options: ["yes", "no"]
`,
		configPath: "catalog:\n  sources:\n    - " + catalogPath + "\n" + `
services:
  - id: farmers
    process_definition_id: onboarding
    forms: [registration]
`,
		bodyPath: `{"formId":"registration","applicationData":{"fields":[{"name":"hasLivestock","value":"Y"}]}}`,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"submit", "--config", configPath, "--log-level", "error", "--service", "farmers", "--file", bodyPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v\n%s\n%s", err, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), `"applicationId"`) {
		t.Fatalf("expected success payload, got %s", stdout.String())
	}
}
