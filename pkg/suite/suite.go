// Package suite loads test-case definitions from YAML suite files.
package suite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// Suite is a named collection of test cases targeting one application.
type Suite struct {
	Name       string          `yaml:"name"`
	AppPackage string          `yaml:"appPackage"`
	Tests      []core.TestCase `yaml:"tests"`
}

// Load reads a suite definition from a YAML file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided suite file
	if err != nil {
		return nil, err
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	if len(s.Tests) == 0 {
		return nil, fmt.Errorf("suite %s defines no tests", path)
	}
	seen := make(map[string]bool, len(s.Tests))
	for i, tc := range s.Tests {
		if tc.Name == "" {
			return nil, fmt.Errorf("suite %s: test %d has no name", path, i+1)
		}
		if seen[tc.Name] {
			return nil, fmt.Errorf("suite %s: duplicate test name %q", path, tc.Name)
		}
		seen[tc.Name] = true
		if tc.Description == "" {
			return nil, fmt.Errorf("suite %s: test %q has no description", path, tc.Name)
		}
	}

	return &s, nil
}

// ByName returns the test case with the given name, or nil.
func (s *Suite) ByName(name string) *core.TestCase {
	for i := range s.Tests {
		if s.Tests[i].Name == name {
			return &s.Tests[i]
		}
	}
	return nil
}

// Passing returns the tests expected to pass, in definition order.
func (s *Suite) Passing() []core.TestCase {
	return s.filter(true)
}

// Failing returns the tests expected to fail, in definition order.
func (s *Suite) Failing() []core.TestCase {
	return s.filter(false)
}

func (s *Suite) filter(shouldPass bool) []core.TestCase {
	var out []core.TestCase
	for _, tc := range s.Tests {
		if tc.ShouldPass == shouldPass {
			out = append(out, tc)
		}
	}
	return out
}

// DemoSubset picks a small representative run: up to two expected-pass and
// two expected-fail tests, in definition order.
func (s *Suite) DemoSubset() []core.TestCase {
	var out []core.TestCase
	pass, fail := 0, 0
	for _, tc := range s.Tests {
		if tc.ShouldPass && pass < 2 {
			out = append(out, tc)
			pass++
		} else if !tc.ShouldPass && fail < 2 {
			out = append(out, tc)
			fail++
		}
	}
	return out
}
