package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikesmitty/ad779x"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("cs", "", "")
	fs.String("cs-chip", "", "")
	fs.Bool("cs-tied", false, "")
	fs.String("variant", "", "")
	fs.String("formula", "", "")
	fs.Int("ref", 0, "")
	fs.String("table", "", "")
	fs.Duration("poll-timeout", 0, "")
	require.Nil(t, fs.Parse(args))
	return fs
}

// inEmptyDir runs the test from a directory without ad779x.json.
func inEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.Nil(t, err)
	require.Nil(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func load(t *testing.T, args ...string) {
	t.Helper()
	cfg, err := loadConfig(testFlags(t, args...))
	require.Nil(t, err)
	settings = cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	inEmptyDir(t)
	load(t)
	opts, err := options()
	require.Nil(t, err)
	assert.Equal(t, ad779x.AD7794, opts.Variant)
	assert.Equal(t, ad779x.FormulaUnipolar, opts.Formula)
	assert.Equal(t, uint64(ad779x.DefaultRefMilliohms), opts.RefMilliohms)
	assert.Equal(t, time.Duration(0), opts.PollTimeout)
	assert.False(t, opts.SelectTiedLow)
	assert.Len(t, opts.Table, 1051)
}

func TestLoadConfigDefaultFile(t *testing.T) {
	dir := inEmptyDir(t)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "ad779x.json"), []byte(`{"variant":"ad7793"}`), 0o644))
	load(t)
	opts, err := options()
	require.Nil(t, err)
	assert.Equal(t, ad779x.AD7793, opts.Variant)
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := inEmptyDir(t)
	_, err := loadConfig(testFlags(t, "--config", filepath.Join(dir, "none.json")))
	assert.NotNil(t, err)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := inEmptyDir(t)
	cfgFile := filepath.Join(dir, "bench.json")
	require.Nil(t, os.WriteFile(cfgFile, []byte(`{"variant":"ad7793","formula":"bipolar","table":"pt100"}`), 0o644))
	t.Setenv("AD779X_FORMULA", "unipolar")

	load(t, "--config", cfgFile, "--poll-timeout", "2s")
	opts, err := options()
	require.Nil(t, err)
	// file
	assert.Equal(t, ad779x.AD7793, opts.Variant)
	assert.InDelta(t, 100.0, opts.Table[200].Resistance, 1e-9)
	// environment over file
	assert.Equal(t, ad779x.FormulaUnipolar, opts.Formula)
	// flags over everything
	assert.Equal(t, 2*time.Second, opts.PollTimeout)
}

func TestOptionsInvalid(t *testing.T) {
	dir := inEmptyDir(t)
	patterns := []struct {
		name string
		args []string
	}{
		{"variant", []string{"--variant", "ad7792"}},
		{"formula", []string{"--formula", "log"}},
		{"ref", []string{"--ref", "-1"}},
		{"table", []string{"--table", filepath.Join(dir, "missing.csv")}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			load(t, p.args...)
			_, err := options()
			assert.NotNil(t, err)
		}
		t.Run(p.name, tf)
	}
}

func TestCheckChipSelect(t *testing.T) {
	inEmptyDir(t)
	patterns := []struct {
		name string
		args []string
		ok   bool
	}{
		{"none", nil, false},
		{"pin", []string{"--cs", "GPIO8"}, true},
		{"line", []string{"--cs-chip", "gpiochip0"}, true},
		{"tied", []string{"--cs-tied"}, true},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			load(t, p.args...)
			err := checkChipSelect()
			if p.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		}
		t.Run(p.name, tf)
	}
	load(t)
	_, _, err := openDevice()
	assert.NotNil(t, err)
}

func TestRootTableWithoutConfigFile(t *testing.T) {
	dir := inEmptyDir(t)
	out, err := os.Create(filepath.Join(dir, "out.csv"))
	require.Nil(t, err)
	stdout := os.Stdout
	os.Stdout = out
	defer func() { os.Stdout = stdout }()

	rootCmd.SetArgs([]string{"table", "--table", "pt100"})
	err = rootCmd.Execute()
	os.Stdout = stdout
	out.Close()
	require.Nil(t, err)

	b, err := os.ReadFile(out.Name())
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "resistance,temperature", lines[0])
	assert.Equal(t, "18.5201,-200.000", lines[1])
	assert.Len(t, lines, 1052)
}

func TestLoadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.csv")
	require.Nil(t, os.WriteFile(path, []byte("resistance,temperature\n1000,0\n1100,25\n"), 0o644))
	tbl, err := loadTable(path)
	require.Nil(t, err)
	assert.Len(t, tbl, 2)
}
