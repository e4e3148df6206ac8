package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func resetGlobals() {
	flagConfig, flagDB, flagFormat, flagSession = "", "", "", ""
	flagRegister, flagUnmarkAll = false, false
	flagMarkersFile = ""
	flagRunFiles = nil
	cfg = config{}
	errorHandled = false
}

func TestValidateFormat(t *testing.T) {
	require.NoError(t, validateFormat("json"))
	require.NoError(t, validateFormat("text"))
	require.Error(t, validateFormat("yaml"))
	require.Error(t, validateFormat(""))
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetGlobals()
	chdir(t, t.TempDir())

	require.NoError(t, loadConfig(""))
	assert.Equal(t, "json", flagFormat)
	assert.Equal(t, ".treepath/sessions.db", flagDB)
	assert.Equal(t, "default", flagSession)
}

func TestLoadConfig_FileAndFlagPrecedence(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	chdir(t, dir)

	yml := "format: text\nsession: review\nmarker_capacity: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte(yml), 0o644))

	// File values apply when flags are unset.
	require.NoError(t, loadConfig(""))
	assert.Equal(t, "text", flagFormat)
	assert.Equal(t, "review", flagSession)
	assert.Equal(t, 5, cfg.MarkerCapacity)

	// Flags win over the file.
	resetGlobals()
	flagFormat = "json"
	require.NoError(t, loadConfig(""))
	assert.Equal(t, "json", flagFormat)
}

func TestLoadConfig_ExplicitMissingFileErrors(t *testing.T) {
	resetGlobals()
	chdir(t, t.TempDir())

	require.Error(t, loadConfig("nope.yml"))
	require.NoError(t, loadConfig(""), "missing default config is fine")
}

const mainSampleGo = `package demo

func Handle() {
	if ok() {
		println("x")
	}
}
`

func TestFindCommand_EndToEnd(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(mainSampleGo), 0o644))

	rootCmd.SetArgs([]string{"find", "//function[@name='Handle']//if", "demo.go", "--register"})
	require.NoError(t, rootCmd.Execute())

	// The register flag persists statement records in the session db.
	assert.FileExists(t, filepath.Join(dir, ".treepath", "sessions.db"))
}

func TestMarkAndUnmarkCommands(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(mainSampleGo), 0o644))

	rootCmd.SetArgs([]string{"mark", "todo", "demo.go", "3", "0"})
	require.NoError(t, rootCmd.Execute())

	resetGlobals()
	rootCmd.SetArgs([]string{"markers"})
	require.NoError(t, rootCmd.Execute())

	resetGlobals()
	rootCmd.SetArgs([]string{"unmark", "--all"})
	require.NoError(t, rootCmd.Execute())
}

func TestFindCommand_SyntaxError(t *testing.T) {
	resetGlobals()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(mainSampleGo), 0o644))

	rootCmd.SetArgs([]string{"find", "//function[", "demo.go"})
	require.Error(t, rootCmd.Execute())
}
