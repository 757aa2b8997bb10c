package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/config"
	"github.com/njchilds90/eeformula/internal/doctor"
)

// execute runs the CLI in isolation from the host config and terminal.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"EEFORMULA_FORMAT", "EEFORMULA_COLOR", "EEFORMULA_LOG_LEVEL", "EEFORMULA_LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================
// Root
// ============================================================

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"solve", "list", "batch", "doctor", "serve", "form", "config"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"verbose", "format", "color", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_InvalidFlag(t *testing.T) {
	_, _, err := execute(t, "solve", "ohm", "--bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_ConfigFileSetsFormat(t *testing.T) {
	path := writeFile(t, "config.toml", "[output]\nformat = \"json\"\n")
	stdout, _, err := execute(t, "--config", path, "solve", "power", "-V", "10", "-I", "2")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRootCommand_FlagBeatsConfig(t *testing.T) {
	path := writeFile(t, "config.toml", "[output]\nformat = \"json\"\n")
	stdout, _, err := execute(t, "--config", path, "--format", "text", "solve", "power", "-V", "10", "-I", "2")
	require.NoError(t, err)
	assert.Equal(t, "Power: P = V * I → 20\n", stdout)
}

// ============================================================
// solve
// ============================================================

func TestSolve_Text(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"forward", []string{"solve", "ohm", "-I", "2", "-R", "3"}, "Ohm's Law: V = I * R → 6\n"},
		{"long flags", []string{"solve", "ohm", "--current", "2", "--resistance", "3"}, "Ohm's Law: V = I * R → 6\n"},
		{"multi-word name", []string{"solve", "ohm's", "law", "-V", "6", "-I", "2"}, "Ohm's Law: V = I * R → R = 3\n"},
		{"residual", []string{"solve", "ohm", "-R", "10"}, "Ohm's Law: V = I * R → 10*I\n"},
		{"set", []string{"solve", "impedance", "-R", "3", "--set", "X_L=10", "--set", "X_C=6"}, "Impedance (RLC series circuit): Z = sqrt(R**2 + (X_L - X_C)**2) → 5\n"},
		{"set overrides field", []string{"solve", "power", "-V", "1", "--set", "V=10", "-I", "2"}, "Power: P = V * I → 20\n"},
		{"frequency shorthand", []string{"solve", "inductive", "-f", "50", "-L", "0.1"}, "Inductive Reactance: X_L = 2 * pi * f * L → 31.4159265358979\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.args...)
			require.NoError(t, err, stderr)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestSolve_EmptyName(t *testing.T) {
	stdout, stderr, err := execute(t, "solve")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsSilent(err))
	assert.Empty(t, stdout)
	assert.Equal(t, eeformula.PromptMessage+"\n", stderr)
}

func TestSolve_NotFoundSuggests(t *testing.T) {
	_, stderr, err := execute(t, "solve", "ohms", "law")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.HasPrefix(stderr, eeformula.NotFoundMessage+"\n"))
	assert.Contains(t, stderr, "Did you mean?")
	assert.Contains(t, stderr, "Ohm's Law")
}

func TestSolve_InvalidValue(t *testing.T) {
	_, stderr, err := execute(t, "solve", "ohm", "-R", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.HasPrefix(stderr, "Error solving formula: "), stderr)
}

func TestSolve_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "solve", "ohm", "-I", "2", "-R", "3")
	require.NoError(t, err)

	var resp struct {
		Status    string           `json:"status"`
		Data      eeformula.Result `json:"data"`
		RequestID string           `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.Value)
	assert.Equal(t, 6.0, *resp.Data.Value)
	assert.Equal(t, "V", resp.Data.Target)
	assert.Len(t, resp.RequestID, 36)
}

func TestSolve_JSONNotFound(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "solve", "ohms", "law")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, eeformula.NotFoundMessage, resp.Error.Message)
	assert.Contains(t, resp.Error.Details, "suggestions")
}

func TestSolve_YAML(t *testing.T) {
	stdout, _, err := execute(t, "--format", "yaml", "solve", "power", "-V", "10", "-I", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: ok")
	assert.Contains(t, stdout, "target: P")
}

// ============================================================
// list
// ============================================================

func TestList_Golden(t *testing.T) {
	stdout, _, err := execute(t, "list")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "list", []byte(stdout))
}

func TestList_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "list")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   []eeformula.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, eeformula.All(), resp.Data)
}

// ============================================================
// batch
// ============================================================

const batchYAML = `queries:
  - name: ohm
    values: {I: 2, R: 3}
  - name: resonant
    values: {L: 1e-3, C: 1e-6}
  - name: power
    values: {V: 10}
`

func TestBatch_Text(t *testing.T) {
	path := writeFile(t, "q.yaml", batchYAML)
	stdout, _, err := execute(t, "batch", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ohm's Law: V = I * R → 6", lines[0])
	assert.Contains(t, lines[1], "→ 5032.9212104487")
	assert.Equal(t, "Power: P = V * I → 10*I", lines[2])
}

func TestBatch_FailureExitCode(t *testing.T) {
	path := writeFile(t, "q.yaml", "queries:\n  - name: ohm\n    values: {I: 2, R: 3}\n  - name: nothing like it\n  - name: ''\n")
	stdout, _, err := execute(t, "batch", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsSilent(err))
	assert.Contains(t, err.Error(), "2 of 3 queries failed")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, eeformula.NotFoundMessage, lines[1])
	assert.Equal(t, eeformula.PromptMessage, lines[2])
}

func TestBatch_Stdin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(batchYAML))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--color", "never", "--format", "json", "batch", "-"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Data []BatchItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "ohm", resp.Data[0].Query.Name)
	require.NotNil(t, resp.Data[0].Result)
	assert.Empty(t, resp.Data[0].Error)
}

func TestBatch_BadFile(t *testing.T) {
	_, _, err := execute(t, "batch", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	path := writeFile(t, "q.yaml", "queries:\n  - nom: ohm\n")
	_, _, err = execute(t, "batch", path)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseBatch_Empty(t *testing.T) {
	bf, err := ParseBatch(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bf.Queries)
	assert.Empty(t, RunBatch(bf))
}

// ============================================================
// doctor, config
// ============================================================

func TestDoctor(t *testing.T) {
	stdout, _, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Catalog")
	assert.Contains(t, stdout, "✓ catalog: 8 formulas valid")
	assert.Contains(t, stdout, "5 passed, 0 warnings, 0 failed")
}

func TestDoctor_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "doctor")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Results []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Results, 5)
	for _, r := range resp.Data.Results {
		assert.Equal(t, "ok", r.Status, r.Name)
	}
}

func TestConfigShow(t *testing.T) {
	stdout, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, `addr = ":8080"`)
	assert.Contains(t, stdout, `write_timeout = "15s"`)
}

func TestConfigPath(t *testing.T) {
	stdout, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), filepath.Join("eeformula", "config.toml")))

	path := writeFile(t, "custom.toml", "")
	stdout, _, err = execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", stdout)
}

func TestRunDoctor_FailedChecks(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"
	d := doctor.New()
	d.Register(doctor.NewCatalogCheck(), doctor.NewConfigCheck())

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})

		err := runDoctor(&RootOptions{Format: "text", Config: cfg}, cmd, d)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.True(t, IsSilent(err))
		assert.Contains(t, out.String(), "config: ")
		assert.Contains(t, out.String(), "1 passed, 0 warnings, 1 failed")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})

		err := runDoctor(&RootOptions{Format: "json", Config: cfg}, cmd, d)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeChecksFailed, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "doctor checks failed")
		assert.NotNil(t, resp.Error.Details)
	})
}

func TestBatch_BadInputCode(t *testing.T) {
	path := writeFile(t, "q.yaml", "queries:\n  - nom: ohm\n")
	stdout, _, err := execute(t, "--format", "json", "batch", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsSilent(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadInput, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid batch file")

	_, stderr, err := execute(t, "batch", path)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(stderr, "invalid batch file: "), stderr)
}

func TestSolve_Verbose(t *testing.T) {
	stdout, stderr, err := execute(t, "-v", "solve", "ohm", "-I", "2", "-R", "3")
	require.NoError(t, err)
	assert.Equal(t, "Ohm's Law: V = I * R → 6\n", stdout)
	assert.Contains(t, stderr, `solving "ohm" with`)
	assert.Contains(t, stderr, "matched Ohm's Law")

	_, stderr, err = execute(t, "solve", "ohm", "-I", "2", "-R", "3")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "solving")
}
