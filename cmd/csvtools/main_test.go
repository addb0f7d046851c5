package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyrasis/csv-data-tools/internal/config"
	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CSVTOOLS_LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0644))
	}
	return dir
}

func TestUnknownDelimiterFailsBeforeIO(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.psv": "id|v\n1|2\n"})
	report := filepath.Join(t.TempDir(), "report.csv")

	_, err := execute(t, "check", "-i", dir, "-o", report, "-s", "psv", "-d", "semicolon")
	require.Error(t, err)

	var optsErr *csv.OptionsError
	require.ErrorAs(t, err, &optsErr)
	assert.Equal(t, "Delimiter", optsErr.Field)
	assert.Contains(t, err.Error(), "comma, pipe, tab")
	assert.NoFileExists(t, report)
}

func TestInvalidFlags(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"markers", []string{"check", "-i", dir, "--markers", "fancy"}, "marker"},
		{"workers", []string{"check", "-i", dir, "--workers", "0"}, "invalid config"},
		{"log format", []string{"check", "-i", dir, "--log-format", "xml"}, "invalid config"},
		{"missing input", []string{"check"}, "input"},
		{"negative columns", []string{"show", "-i", "x.psv", "-c", "-1"}, "Columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReconstructCommand(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"raw.psv":  "id|note\r\n1|first\r\n\tsecond\r\n2|x\r\n",
		"skip.csv": "a,b\n",
	})
	out := filepath.Join(t.TempDir(), "repaired")

	stdout, err := execute(t, "reconstruct", "-i", in, "-o", out, "-s", "psv")
	require.NoError(t, err)
	assert.Equal(t, "Reconstructed 1 files into "+out+"\n", stdout)

	data, err := os.ReadFile(filepath.Join(out, "raw_l.psv"))
	require.NoError(t, err)
	assert.Equal(t, "id|note\n1|first%TABBREAK%second\n2|x\n", string(data))

	report, err := os.ReadFile(filepath.Join(out, "file_report.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"tablename,encoding,EOL,longlines,structureok,rows,columns\n"+
			"raw.psv,ASCII,CRLF,no,y,3,2\n",
		string(report))
}

func TestReconstructCommand_PlainMarkers(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"raw.txt": "id|note\r\n1|first\r\n\tsecond\r\n",
	})
	out := t.TempDir()

	_, err := execute(t, "reconstruct", "-i", in, "-o", out, "-s", "txt", "-d", "pipe", "--markers", "plain")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "raw_l.txt"))
	require.NoError(t, err)
	assert.Equal(t, "id|note\n1|first second\n", string(data))
}

func TestReconstructCommand_StripPlus(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"raw.psv": "id|note|extra\r\n1|a   b,|NULL\r\n",
	})
	out := t.TempDir()

	_, err := execute(t, "reconstruct", "-i", in, "-o", out, "-s", "psv", "--strip-plus")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "raw_l.psv"))
	require.NoError(t, err)
	assert.Equal(t, "id|note|extra\n1|a b|\n", string(data))
}

func TestStripPlusUsage(t *testing.T) {
	for _, name := range []string{"reconstruct", "check", "show"} {
		cmd, _, err := newRootCmd().Find([]string{name})
		require.NoError(t, err)
		flag := cmd.Flags().Lookup("strip-plus")
		require.NotNil(t, flag, name)
		assert.NotContains(t, flag.Usage, "+..+", name)
		assert.Contains(t, flag.Usage, "space", name)
		assert.Contains(t, flag.Usage, "NULL", name)
	}
}

func TestCheckCommand(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"good.psv": "id|name\n1|a\n2|b\n",
		"bad.psv":  "id|name\n1|a|x\n2|b\n",
	})

	stdout, err := execute(t, "check", "-i", in, "-s", "psv")
	require.NoError(t, err)
	assert.Equal(t,
		"filename,ok?,col_ct,occurrences,example_rows\n"+
			"bad.psv,n,2,1,\n"+
			"bad.psv,n,3,1,2\n"+
			"good.psv,y,2,2,\n",
		stdout)

	report := filepath.Join(t.TempDir(), "out", "structure.csv")
	stdout, err = execute(t, "check", "-i", in, "-s", "psv", "-o", report)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "good.psv,y,2,2,\n")
}

func TestCheckCommand_Reconstruct(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"raw.psv": "id|note\r\n1|first\r\n\tsecond\r\n2|x\r\n",
	})

	stdout, err := execute(t, "check", "-i", in, "-s", "psv", "--reconstruct")
	require.NoError(t, err)
	assert.Equal(t, "filename,ok?,col_ct,occurrences,example_rows\nraw.psv,y,2,2,\n", stdout)
}

func TestInfoCommand(t *testing.T) {
	in := writeFiles(t, map[string]string{
		"big.psv":   "id|name\r\n1|Ann\r\n",
		"small.psv": "x",
	})

	stdout, err := execute(t, "info", "-i", in, "-m", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "filename,size,mimetype,encoding,EOL,longlines", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "big.psv,16,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], ",ASCII,CRLF,no"), lines[1])
}

func TestShowCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"rows.psv": "a|b\r\n1|2|3\r\n4|5\r\n6|7|8\r\n",
	})
	path := filepath.Join(dir, "rows.psv")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all", []string{"-c", "3"}, "1|2|3\n6|7|8\n"},
		{"limited", []string{"-c", "3", "-l", "1"}, "1|2|3\n"},
		{"header width", []string{"-c", "2"}, "a|b\n4|5\n"},
		{"none", []string{"-c", "5"}, "No rows with 5 columns\n"},
		{"explicit delimiter", []string{"-c", "1", "-d", "comma"}, "a|b\n1|2|3\n4|5\n6|7|8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"show", "-i", path}, tt.args...)
			stdout, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestShowRows_TrailingEmptyFields(t *testing.T) {
	opts := csv.DefaultOptions()
	opts.Delimiter = "|"

	var out bytes.Buffer
	require.NoError(t, showRows(&out, "a|b|c\nx|y|\nz|\n", opts, 3, 0))
	assert.Equal(t, "a|b|c\nx|y|\n", out.String())
}

func TestGuessDelimiter(t *testing.T) {
	assert.Equal(t, "\t", guessDelimiter("export.tsv", "a,b", ","))
	assert.Equal(t, "|", guessDelimiter("export.dat", "a|b|c\n1|2|3\n", ","))
	assert.Equal(t, ",", guessDelimiter("export.dat", "plain", ","))
}

func TestConfigCommand(t *testing.T) {
	t.Run("prints effective config", func(t *testing.T) {
		stdout, err := execute(t, "--workers", "3", "config")
		require.NoError(t, err)
		assert.Contains(t, stdout, "markers: sentinel")
		assert.Contains(t, stdout, "workers: 3")
	})

	t.Run("saves a loadable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "csvtools.yaml")
		stdout, err := execute(t, "--workers", "5", "config", "-o", path)
		require.NoError(t, err)
		assert.Equal(t, "Wrote "+path+"\n", stdout)

		loaded, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, loaded.Workers)
		assert.Equal(t, "sentinel", loaded.Markers)
	})
}
