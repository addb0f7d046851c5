package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	return dir
}

func pipeConfig() Config {
	opts := csv.DefaultOptions()
	opts.Delimiter = "|"
	return Config{Suffix: "psv", Options: opts, Workers: 2}
}

func TestNormalizeSuffix(t *testing.T) {
	assert.Equal(t, ".psv", NormalizeSuffix("psv"))
	assert.Equal(t, ".psv", NormalizeSuffix(".PSV"))
	assert.Equal(t, "", NormalizeSuffix(" "))
}

func TestListFiles(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"b.psv":    nil,
		"A.PSV":    nil,
		"c.txt":    nil,
		"notes.md": nil,
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.psv"), 0755))

	paths, err := ListFiles(dir, "psv")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.PSV"), filepath.Join(dir, "b.psv")}, paths)

	all, err := ListFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = ListFiles(filepath.Join(dir, "missing"), "psv")
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "Objects_l.psv", OutputName("Objects.psv"))
	assert.Equal(t, "a.b_l.TSV", OutputName("a.b.TSV"))
	assert.Equal(t, "noext_l", OutputName("noext"))
}

func TestRunner_Check(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"good.psv":  []byte("id|name\n1|a\n2|b\n"),
		"bad.psv":   []byte("id|name\n1|a|x\n2|b\n3\n"),
		"empty.psv": nil,
		"skip.txt":  []byte("ignored"),
	})

	core, logs := observer.New(zap.DebugLevel)
	r := NewRunner(pipeConfig(), zap.New(core))
	reports, err := r.Check(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	bad, empty, good := reports[0], reports[1], reports[2]

	assert.Equal(t, "bad.psv", bad.Filename)
	assert.False(t, bad.OK)
	assert.Equal(t, 2, bad.Expected)
	assert.Equal(t, 1, bad.Correct)
	require.Len(t, bad.Buckets, 2)
	assert.Equal(t, 3, bad.Buckets[0].FieldCount)
	assert.Equal(t, []csv.Example{{Index: 2, Raw: "1|a|x"}}, bad.Buckets[0].Examples)
	assert.Equal(t, 1, bad.Buckets[1].FieldCount)
	assert.Equal(t, "4", bad.Buckets[1].ExampleIndexes())

	assert.Equal(t, "empty.psv", empty.Filename)
	assert.ErrorIs(t, empty.Err, csv.ErrEmptyHeader)
	var ferr *FileError
	require.ErrorAs(t, empty.Err, &ferr)
	assert.Equal(t, StageCheck, ferr.Stage)

	assert.Equal(t, "good.psv", good.Filename)
	assert.True(t, good.OK)
	assert.Equal(t, 2, good.Correct)

	assert.Equal(t, 1, logs.FilterMessage("file failed").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, r.RunID(), entry.ContextMap()["run_id"])
	}
}

func TestRunner_CheckReconstructs(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"raw.psv": []byte("id|note\r\n1|first\r\n\tsecond\r\n2|x\r\n"),
	})
	cfg := pipeConfig()
	cfg.Reconstruct = true

	reports, err := NewRunner(cfg, nil).Check(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].OK)
	assert.Equal(t, 2, reports[0].Correct)
}

func TestRunner_CheckSniffsDelimiter(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"t.dat": []byte("a\tb\tc\n1\t2\t3\n"),
	})
	cfg := Config{Suffix: ".dat", Options: csv.DefaultOptions(), SniffDelimiter: true}

	reports, err := NewRunner(cfg, nil).Check(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].OK)
	assert.Equal(t, 3, reports[0].Expected)
}

func TestRunner_Cancelled(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"a.psv": []byte("id\n1\n")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(pipeConfig(), nil).Check(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewRunner(pipeConfig(), nil).Reconstruct(ctx, dir, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_MissingDir(t *testing.T) {
	_, err := NewRunner(pipeConfig(), nil).Check(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "list")
}

func TestRunner_Reconstruct(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"raw.psv":   []byte("id|note\r\n---|----\r\n1|first\r\n\tsecond\r\n2|x\r\n"),
		"rag.psv":   []byte("id|v\r\n1|a|b\r\n2|c\r\n"),
		"wide.psv":  utf16le("id|v\r\n1|a\r\n", true),
		"empty.psv": nil,
	})
	out := filepath.Join(t.TempDir(), "out")

	results, err := NewRunner(pipeConfig(), nil).Reconstruct(context.Background(), dir, out)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byName := make(map[string]ReconstructResult)
	for _, res := range results {
		byName[res.Name] = res
	}

	raw := byName["raw.psv"]
	require.NoError(t, raw.Err)
	assert.True(t, raw.StructureOK())
	assert.Equal(t, []ColumnCount{{Columns: 2, Rows: 3}}, raw.Structure)
	assert.Equal(t, EncodingASCII, raw.Info.Encoding)
	assert.Equal(t, "CRLF", raw.Info.EOL)
	assert.Equal(t, "no", raw.Info.LongLines)
	assert.Equal(t, filepath.Join(out, "raw_l.psv"), raw.Output)
	data, err := os.ReadFile(raw.Output)
	require.NoError(t, err)
	assert.Equal(t, "id|note\n1|first%TABBREAK%second\n2|x\n", string(data))

	rag := byName["rag.psv"]
	assert.False(t, rag.StructureOK())
	assert.Equal(t, []ColumnCount{{Columns: 2, Rows: 2}, {Columns: 3, Rows: 1}}, rag.Structure)

	wide := byName["wide.psv"]
	require.NoError(t, wide.Err)
	assert.Equal(t, EncodingUTF16LE, wide.Info.Encoding)
	data, err = os.ReadFile(filepath.Join(out, "wide_l.psv"))
	require.NoError(t, err)
	assert.Equal(t, "id|v\n1|a\n", string(data))

	empty := byName["empty.psv"]
	require.NoError(t, empty.Err)
	assert.Equal(t, []ColumnCount{{Columns: 1, Rows: 1}}, empty.Structure)
}

func TestRunner_Info(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"big.psv":   []byte("id|name\r\n1|Ann\r\n"),
		"small.psv": []byte("x"),
	})
	cfg := pipeConfig()
	cfg.MinSize = 2

	results, err := NewRunner(cfg, nil).Info(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "big.psv", results[0].Name)
	assert.Equal(t, int64(16), results[0].Info.Size)
	assert.Equal(t, "CRLF", results[0].Info.EOL)
}
