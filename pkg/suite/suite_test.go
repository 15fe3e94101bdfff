package suite

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSuite = `
name: obsidian-smoke
appPackage: md.obsidian
tests:
  - name: test_create_vault
    description: Create a vault named InternVault
    expectedResult: Vault created and main interface visible
    shouldPass: true
    steps:
      - Tap 'Create a vault'
      - Type 'InternVault'
  - name: test_create_note
    description: Create a note in the vault
    expectedResult: Note editor opens with the new note
    shouldPass: true
  - name: test_appearance_icon_red
    description: Change the app icon color to red in appearance settings
    expectedResult: No red icon option exists
    shouldPass: false
  - name: test_print_to_pdf
    description: Print the current note to PDF
    expectedResult: No print option exists
    shouldPass: false
  - name: test_search
    description: Search for a note
    expectedResult: Search results shown
    shouldPass: true
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	s, err := Load(writeSuite(t, sampleSuite))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Name != "obsidian-smoke" {
		t.Errorf("got name %q", s.Name)
	}
	if s.AppPackage != "md.obsidian" {
		t.Errorf("got appPackage %q", s.AppPackage)
	}
	if len(s.Tests) != 5 {
		t.Fatalf("got %d tests, want 5", len(s.Tests))
	}
	if len(s.Tests[0].Steps) != 2 {
		t.Errorf("got %d documentation steps, want 2", len(s.Tests[0].Steps))
	}
	if s.Tests[2].ShouldPass {
		t.Error("test_appearance_icon_red should be expected-fail")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no tests", content: "name: empty\ntests: []\n"},
		{name: "missing name", content: "tests:\n  - description: x\n    shouldPass: true\n"},
		{name: "missing description", content: "tests:\n  - name: t1\n    shouldPass: true\n"},
		{name: "duplicate names", content: "tests:\n  - name: t1\n    description: a\n  - name: t1\n    description: b\n"},
		{name: "invalid yaml", content: "tests: [broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeSuite(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestByName(t *testing.T) {
	s, err := Load(writeSuite(t, sampleSuite))
	if err != nil {
		t.Fatal(err)
	}

	if tc := s.ByName("test_create_note"); tc == nil || tc.Description == "" {
		t.Errorf("lookup failed: %+v", tc)
	}
	if tc := s.ByName("test_missing"); tc != nil {
		t.Errorf("expected nil for unknown name, got %+v", tc)
	}
}

func TestPassingFailingSplit(t *testing.T) {
	s, err := Load(writeSuite(t, sampleSuite))
	if err != nil {
		t.Fatal(err)
	}

	if got := len(s.Passing()); got != 3 {
		t.Errorf("got %d passing, want 3", got)
	}
	if got := len(s.Failing()); got != 2 {
		t.Errorf("got %d failing, want 2", got)
	}
}

func TestDemoSubset(t *testing.T) {
	s, err := Load(writeSuite(t, sampleSuite))
	if err != nil {
		t.Fatal(err)
	}

	demo := s.DemoSubset()
	if len(demo) != 4 {
		t.Fatalf("got %d demo tests, want 4", len(demo))
	}
	pass := 0
	for _, tc := range demo {
		if tc.ShouldPass {
			pass++
		}
	}
	if pass != 2 {
		t.Errorf("got %d expected-pass in demo, want 2", pass)
	}
}
