package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunGolden loads and runs a scenario, then compares its debug report
// against the golden snapshot testdata/golden/<name>.golden.
//
// Regenerate goldens with: go test ./internal/harness -update
func RunGolden(t *testing.T, scenarioPath string) error {
	t.Helper()

	scenario, err := Load(scenarioPath)
	if err != nil {
		return err
	}
	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Passed() {
		return fmt.Errorf("scenario %s: %d check(s) failed: %v",
			scenario.Name, len(result.Failures), result.Failures)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-computed result's report against the
// golden file for the given scenario name.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	if result.Report == nil {
		return fmt.Errorf("scenario %s has no report step to snapshot", scenarioName)
	}
	data, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
