package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/archlint/internal/adapters/inbound/cli"
)

const (
	cleanDir      = "../../../../testdata/spring-layered/clean"
	taintedDir    = "../../../../testdata/spring-layered/tainted"
	brokenDir     = "../../../../testdata/spring-layered/broken"
	configuredDir = "../../../../testdata/spring-layered/configured"
)

func TestValidateCommand_CleanPasses(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", cleanDir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "PASSED")
	assert.Contains(t, buf.String(), "No violations found.")
}

func TestValidateCommand_TaintedFailsExit(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", taintedDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "27 error(s)")
	assert.Contains(t, buf.String(), "FAILED")
	assert.Contains(t, buf.String(), "LAYER_INVERSION")
}

func TestValidateCommand_JSON(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", cleanDir, "--json"})
	require.NoError(t, cmd.Execute())

	var result map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err, "output should be valid JSON")
	assert.Equal(t, true, result["passed"])
	assert.Contains(t, result, "errorCount")
	assert.Contains(t, result, "violations")
}

func TestValidateCommand_JSONStillWrittenOnFailure(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", taintedDir, "--json"})

	require.Error(t, cmd.Execute())

	var result map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err, "report should be written before the exit decision")
	assert.Equal(t, false, result["passed"])
	assert.EqualValues(t, 27, result["errorCount"])
	assert.EqualValues(t, 2, result["warningCount"])
}

func TestValidateCommand_FailOnNone(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", taintedDir, "--fail-on", "none"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "FAILED", "verdict is independent of the exit threshold")
}

func TestValidateCommand_StyleAspect(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", taintedDir, "--aspect", "style"})
	require.NoError(t, cmd.Execute(), "style findings are warnings and the default threshold is error")
	assert.Contains(t, buf.String(), "TYPE_NAME_STYLE")
}

func TestValidateCommand_StyleAspectFailOnWarning(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", taintedDir, "--aspect", "style", "--fail-on", "warning"})
	assert.Error(t, cmd.Execute())
}

func TestValidateCommand_UnknownAspect(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", cleanDir, "--aspect", "bogus"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown aspect")
}

func TestValidateCommand_UnknownFailOn(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", cleanDir, "--fail-on", "fatal"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fail-on")
}

func TestValidateCommand_ProjectConfigAutoLoaded(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", configuredDir})

	err := cmd.Execute()
	require.Error(t, err, "configured fixture maps core/ into the domain layer")
	assert.Contains(t, buf.String(), "DOMAIN_FRAMEWORK_MARKER")
	assert.NotContains(t, buf.String(), "legacy/", "excluded paths never surface")
}

func TestValidateCommand_ConfigFlagOverridesProjectFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "relaxed.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("fail_on: none\n"), 0o644))

	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", taintedDir, "--config", cfgPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "FAILED")
}

func TestValidateCommand_BrokenFileReported(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", brokenDir})
	require.NoError(t, cmd.Execute(), "parse failures are diagnostics, not errors")
	assert.Contains(t, buf.String(), "parse_failure")
	assert.Contains(t, buf.String(), "Mangled.java")
}

func TestValidateCommand_MissingPath(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", "/does/not/exist"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateCommand_TimeoutFlagParsed(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", cleanDir, "--timeout", "30s"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "PASSED")
}
