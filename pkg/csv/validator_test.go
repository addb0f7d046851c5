package csv_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

func rowsFrom(t *testing.T, text string, delim string) []csv.Row {
	t.Helper()
	opts := csv.DefaultOptions()
	opts.Delimiter = delim
	rows, err := csv.ReadAll(strings.NewReader(text), opts)
	require.NoError(t, err)
	return rows
}

func TestCheck_AllRowsMatch(t *testing.T) {
	rows := rowsFrom(t, "age,name,likes\n37,Jacob,games\n25,Anna,\n", ",")

	report, err := csv.Check("people.csv", rows, csv.DefaultOptions())
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.Equal(t, "people.csv", report.Filename)
	assert.Equal(t, 3, report.Expected)
	assert.Equal(t, 2, report.Correct)
	assert.Empty(t, report.Buckets)
	assert.Equal(t, 2, report.Total())
}

func TestValidator_Record(t *testing.T) {
	opts := csv.DefaultOptions()
	sp := csv.NewSplitter(opts)
	v, err := csv.NewValidator(sp.Split("a,b,c,d", 0), opts)
	require.NoError(t, err)

	v.Record(sp.Split("1,2,3,4", 1), 1)
	v.Record(sp.Split("5,6,7,8", 2), 2)
	v.Record(sp.Split("9,10,11,12,13", 3), 3)

	report := v.Report("x.csv")
	assert.False(t, report.OK)
	assert.Equal(t, 4, report.Expected)
	assert.Equal(t, 2, report.Correct)

	want := []csv.AnomalyBucket{{
		FieldCount:  5,
		Occurrences: 1,
		Examples:    []csv.Example{{Index: 3, Raw: "9,10,11,12,13"}},
	}}
	if diff := cmp.Diff(want, report.Buckets); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_ExampleLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 0},
		{1, 1},
		{3, 3},
		{10, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d", tt.limit), func(t *testing.T) {
			opts := csv.DefaultOptions()
			opts.ExampleLimit = tt.limit
			sp := csv.NewSplitter(opts)
			v, err := csv.NewValidator(sp.Split("a,b", 1), opts)
			require.NoError(t, err)

			for i := 2; i <= 6; i++ {
				v.Record(sp.Split("only", i), i)
			}
			report := v.Report("f")
			require.Len(t, report.Buckets, 1)
			assert.Equal(t, 5, report.Buckets[0].Occurrences)
			assert.Len(t, report.Buckets[0].Examples, tt.want)
			for j, ex := range report.Buckets[0].Examples {
				assert.Equal(t, j+2, ex.Index, "examples keep first-seen order")
			}
		})
	}
}

func TestValidator_BucketOrderAndTotals(t *testing.T) {
	opts := csv.DefaultOptions()
	sp := csv.NewSplitter(opts)
	v, err := csv.NewValidator(sp.Split("a,b,c", 1), opts)
	require.NoError(t, err)

	lines := []string{"1,2", "1,2,3", "1,2,3,4", "1", "1,2", "", "1,2,3"}
	for i, l := range lines {
		v.Record(sp.Split(l, i+2), i+2)
	}

	report := v.Report("f")
	counts := make([]int, len(report.Buckets))
	sum := 0
	for i, b := range report.Buckets {
		counts[i] = b.FieldCount
		sum += b.Occurrences
		assert.LessOrEqual(t, len(b.Examples), csv.DefaultExampleLimit)
	}
	assert.Equal(t, []int{2, 4, 1}, counts, "buckets in first-seen order")
	assert.Equal(t, len(lines), sum+report.Correct)
	assert.Equal(t, len(lines), v.Total())
	assert.Equal(t, v.Total(), report.Total())
	assert.Equal(t, "2, 6", report.Buckets[0].ExampleIndexes())
}

func TestValidator_BlankRowsHaveNoFields(t *testing.T) {
	rows := rowsFrom(t, "a|b\n1|2\n\n3|4\n", "|")
	opts := csv.DefaultOptions()
	opts.Delimiter = "|"

	report, err := csv.Check("f.psv", rows, opts)
	require.NoError(t, err)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 0, report.Buckets[0].FieldCount)
	assert.Equal(t, []csv.Example{{Index: 3, Raw: ""}}, report.Buckets[0].Examples)
}

func TestValidator_ReportIsSnapshot(t *testing.T) {
	opts := csv.DefaultOptions()
	sp := csv.NewSplitter(opts)
	v, err := csv.NewValidator(sp.Split("a,b", 1), opts)
	require.NoError(t, err)

	v.Record(sp.Split("x", 2), 2)
	report := v.Report("f")
	v.Record(sp.Split("y", 3), 3)

	assert.Equal(t, 1, report.Buckets[0].Occurrences)
	assert.Len(t, report.Buckets[0].Examples, 1)
}

func TestCheck_EmptyInput(t *testing.T) {
	report, err := csv.Check("empty.csv", nil, csv.DefaultOptions())
	assert.True(t, errors.Is(err, csv.ErrEmptyHeader))
	assert.Equal(t, "empty.csv", report.Filename)
	assert.ErrorIs(t, report.Err, csv.ErrEmptyHeader)
}

func TestCheck_Idempotent(t *testing.T) {
	rows := rowsFrom(t, "a,b\n1\n2,3\n4,5,6\n", ",")
	first, err := csv.Check("f", rows, csv.DefaultOptions())
	require.NoError(t, err)
	second, err := csv.Check("f", rows, csv.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckDocument_AfterReconstruct(t *testing.T) {
	opts := pipeOptions()
	doc, err := csv.Reconstruct("id|note\r\n1|text\r\n\tcontinued\r\n2|field:\r\n123|next|extra\r\n", opts)
	require.NoError(t, err)

	report, err := csv.CheckDocument("objects.psv", doc, opts)
	require.NoError(t, err)

	assert.False(t, report.OK)
	assert.Equal(t, 2, report.Correct)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 3, report.Buckets[0].FieldCount)
	assert.Equal(t, []csv.Example{{Index: 4, Raw: "123|next|extra"}}, report.Buckets[0].Examples)
}

func TestCheckBytes(t *testing.T) {
	opts := csv.DefaultOptions()
	opts.Delimiter = "\t"
	report, err := csv.CheckBytes("t.tsv", []byte("a\tb\n1\t2\n\"q\tx\"\t3\n"), opts)
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Equal(t, 2, report.Correct)
}

func TestCheckReader_StrictQuoteError(t *testing.T) {
	opts := csv.DefaultOptions()
	opts.StrictQuotes = true
	report, err := csv.CheckReader("bad.csv", strings.NewReader("a,b\n1,x\"y\n"), opts)
	assert.ErrorIs(t, err, csv.ErrBareQuote)
	assert.Equal(t, err, report.Err)
}
