package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/qapilot/pkg/config"
	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/suite"
)

func testSuite() *suite.Suite {
	return &suite.Suite{
		Name: "sample",
		Tests: []core.TestCase{
			{Name: "t1", Description: "a", ShouldPass: true},
			{Name: "t2", Description: "b", ShouldPass: false},
			{Name: "t3", Description: "c", ShouldPass: true},
			{Name: "t4", Description: "d", ShouldPass: true},
			{Name: "t5", Description: "e", ShouldPass: false},
			{Name: "t6", Description: "f", ShouldPass: false},
		},
	}
}

func TestSelectCases_All(t *testing.T) {
	cases, err := selectCases(testSuite(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 6 {
		t.Errorf("got %d cases, want 6", len(cases))
	}
}

func TestSelectCases_Single(t *testing.T) {
	cases, err := selectCases(testSuite(), "t2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].Name != "t2" {
		t.Errorf("got %+v", cases)
	}
}

func TestSelectCases_Unknown(t *testing.T) {
	_, err := selectCases(testSuite(), "t99", false)
	if err == nil {
		t.Fatal("expected error for unknown test name")
	}
	if !strings.Contains(err.Error(), "t99") {
		t.Errorf("error should name the missing test: %v", err)
	}
}

func TestSelectCases_Demo(t *testing.T) {
	cases, err := selectCases(testSuite(), "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 4 {
		t.Fatalf("got %d demo cases, want 4", len(cases))
	}
	pass := 0
	for _, tc := range cases {
		if tc.ShouldPass {
			pass++
		}
	}
	if pass != 2 {
		t.Errorf("got %d expected-pass in demo, want 2", pass)
	}
}

func TestSelectCases_NameWinsOverDemo(t *testing.T) {
	cases, err := selectCases(testSuite(), "t1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 1 || cases[0].Name != "t1" {
		t.Errorf("got %+v", cases)
	}
}

func TestPreflight_MissingAPIKey(t *testing.T) {
	cfg := &config.Config{ADBPath: "adb"}
	err := preflight(cfg)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error should name the env variable: %v", err)
	}
}

func TestPreflight_NoADB(t *testing.T) {
	// A nonexistent adb binary must fail the check before the device list
	// is even consulted.
	cfg := &config.Config{
		APIKey:  "key",
		ADBPath: filepath.Join(t.TempDir(), "no-such-adb"),
	}
	if err := preflight(cfg); err == nil {
		t.Fatal("expected error for unavailable adb")
	}
}
