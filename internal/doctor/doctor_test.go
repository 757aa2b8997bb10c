package doctor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/config"
)

func TestDefault_AllChecksPass(t *testing.T) {
	report := Default().Run(&CheckContext{Config: config.Default()})

	require.Len(t, report.Results, 5)
	for _, res := range report.Results {
		assert.Equal(t, StatusOK, res.Status, "%s: %s %v", res.Name, res.Message, res.Details)
		assert.NotEmpty(t, res.Category)
	}
	assert.NoError(t, report.Err())
	assert.Equal(t, "5 passed, 0 warnings, 0 failed", report.Summary())
}

func TestDefault_CheckOrder(t *testing.T) {
	var names []string
	for _, c := range Default().Checks() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"catalog", "round-trip", "cross-check", "inverse", "config"}, names)
}

func TestConfigCheck_MissingConfigWarns(t *testing.T) {
	report := Default().Run(&CheckContext{})

	last := report.Results[len(report.Results)-1]
	assert.Equal(t, "config", last.Name)
	assert.Equal(t, StatusWarning, last.Status)
	assert.NotEmpty(t, last.FixHint)
	assert.NoError(t, report.Err(), "warnings do not fail the run")
}

func TestConfigCheck_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"

	res := NewConfigCheck().Run(&CheckContext{Config: cfg})
	assert.Equal(t, StatusError, res.Status)
}

func TestCatalogCheck_Broken(t *testing.T) {
	entries := []eeformula.Entry{
		{Name: "Ohm's Law", Equation: "V = I * R"},
		{Name: "Ohm's Law", Equation: "V = I * R"},
		{Name: "Two", Equation: "a = b = c"},
	}
	report := Default().Run(&CheckContext{Entries: entries, Config: config.Default()})

	res := report.Results[0]
	assert.Equal(t, "catalog", res.Name)
	assert.Equal(t, StatusError, res.Status)
	require.Len(t, res.Details, 1)
	assert.Contains(t, res.Details[0], "duplicate")

	err := report.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksFailed))
}

func TestCatalogCheck_Empty(t *testing.T) {
	res := NewCatalogCheck().Run(&CheckContext{Entries: []eeformula.Entry{}})
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "catalog is empty", res.Message)
}

func TestReference(t *testing.T) {
	tests := []struct {
		entry  eeformula.Entry
		values map[string]float64
		want   float64
	}{
		{eeformula.Entry{Name: "ohm", Equation: "V = I * R"}, map[string]float64{"I": 2, "R": 3}, 6},
		{eeformula.Entry{Name: "cap", Equation: "E = 1/2 * C * V**2"}, map[string]float64{"C": 2, "V": 3}, 9},
		{eeformula.Entry{Name: "z", Equation: "Z = sqrt(R**2 + (X_L - X_C)**2)"}, map[string]float64{"R": 3, "X_L": 10, "X_C": 6}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.entry.Name, func(t *testing.T) {
			got, err := Reference(tt.entry, tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestReference_Resonant(t *testing.T) {
	entry := eeformula.All()[4]
	got, err := Reference(entry, map[string]float64{"L": 1e-3, "C": 1e-6})
	require.NoError(t, err)
	assert.InDelta(t, 5032.921210448704, got, 1e-6)
}

func TestCrossCheck_VariableWithoutSample(t *testing.T) {
	entries := []eeformula.Entry{{Name: "Mystery", Equation: "Q = q * 2"}}
	res := NewCrossCheck().Run(&CheckContext{Entries: entries})
	assert.Equal(t, StatusError, res.Status)
	require.Len(t, res.Details, 1)
	assert.Contains(t, res.Details[0], "Mystery")
}

type panicCheck struct{ BaseCheck }

func (panicCheck) Run(*CheckContext) *CheckResult { panic("boom") }

func TestRun_RecoversPanics(t *testing.T) {
	d := New()
	d.Register(panicCheck{BaseCheck{CheckName: "explodes", CheckCategory: CategoryKernel}})

	report := d.Run(&CheckContext{})
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusError, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Message, "boom")
	assert.Equal(t, CategoryKernel, report.Results[0].Category)
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "x", Status: StatusWarning})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warning"`)
	assert.Equal(t, "Status(9)", Status(9).String())
}
