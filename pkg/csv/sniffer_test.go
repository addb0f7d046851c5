package csv_test

import (
	"testing"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

func TestSnifferDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   string
		found  bool
	}{
		{
			name:   "comma delimited",
			sample: "a,b,c\n1,2,3\n4,5,6",
			want:   ",",
			found:  true,
		},
		{
			name:   "tab delimited",
			sample: "a\tb\tc\n1\t2\t3\n4\t5\t6",
			want:   "\t",
			found:  true,
		},
		{
			name:   "pipe delimited",
			sample: "a|b|c\r\n1|2|3\r\n",
			want:   "|",
			found:  true,
		},
		{
			name:   "empty sample defaults to comma",
			sample: "",
			want:   ",",
			found:  false,
		},
		{
			name:   "no candidate at all",
			sample: "a;b;c\n1;2;3",
			want:   ",",
			found:  false,
		},
		{
			name:   "quoted commas ignored",
			sample: "\"a,b,c\"|d\n1|2",
			want:   "|",
			found:  true,
		},
		{
			name:   "consistent pipes beat commas in values",
			sample: "id|note\n1|a, b, c\n2|d\n",
			want:   "|",
			found:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := csv.NewSniffer(tt.sample).DetectDelimiter()
			if got != tt.want || found != tt.found {
				t.Errorf("DetectDelimiter() = %q, %v; want %q, %v", got, found, tt.want, tt.found)
			}
		})
	}
}

func TestSnifferCaching(t *testing.T) {
	s := csv.NewSniffer("a\tb\n1\t2")
	first, _ := s.DetectDelimiter()
	second, _ := s.DetectDelimiter()
	if first != second || first != "\t" {
		t.Errorf("DetectDelimiter() = %q then %q, want tab twice", first, second)
	}
}
