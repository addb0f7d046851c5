// Package batch runs the repair and check passes over a directory of
// exports and builds the cumulative reports.
//
// Files are independent: each is loaded, decoded and processed on its own
// goroutine, bounded by Config.Workers. Results land in per-file slots and
// are returned in filename order once every file is done, so report
// writing stays serial. A failure in one file becomes that file's error row;
// only cancellation stops a run.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

// sniffSample is how much decoded text the delimiter sniffer sees.
const sniffSample = 8 * 1024

// Config configures a Runner.
type Config struct {
	// Suffix selects input files, compared case-insensitively. A missing
	// leading dot is added.
	Suffix string
	// Options is used for every file. With SniffDelimiter set, each file's
	// delimiter is guessed from its first lines instead.
	Options        csv.Options
	SniffDelimiter bool
	// Workers bounds concurrent files. Zero means GOMAXPROCS.
	Workers int
	// Reconstruct makes Check repair each file before validating it rather
	// than read it as well-formed delimited text.
	Reconstruct bool
	// MinSize skips smaller files in Info.
	MinSize int64
}

// Runner processes the files of one directory.
type Runner struct {
	cfg    Config
	logger *zap.Logger
	runID  string
}

// NewRunner creates a Runner. A nil logger discards all output.
func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	cfg.Suffix = NormalizeSuffix(cfg.Suffix)
	runID := uuid.NewString()
	return &Runner{
		cfg:    cfg,
		logger: logger.With(zap.String("run_id", runID)),
		runID:  runID,
	}
}

// RunID identifies this runner's log lines.
func (r *Runner) RunID() string {
	return r.runID
}

// NormalizeSuffix lower-cases a suffix and makes sure it starts with a dot.
func NormalizeSuffix(suffix string) string {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix == "" {
		return ""
	}
	return "." + strings.TrimPrefix(suffix, ".")
}

// ListFiles returns the regular files in dir whose names end in suffix,
// sorted by name. An empty suffix matches every file.
func ListFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	suffix = NormalizeSuffix(suffix)
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if suffix != "" && !strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputName is the repaired file's name: the input name with "_l" before
// its extension.
func OutputName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_l" + ext
}

// forEach runs fn over paths on the worker pool. It returns early only when
// ctx is cancelled.
func (r *Runner) forEach(ctx context.Context, paths []string, fn func(ctx context.Context, i int, path string)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) list(dir string) ([]string, error) {
	paths, err := ListFiles(dir, r.cfg.Suffix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	r.logger.Info("batch started",
		zap.String("dir", dir),
		zap.String("suffix", r.cfg.Suffix),
		zap.Int("files", len(paths)),
		zap.Int("workers", r.cfg.Workers))
	return paths, nil
}

// optionsFor returns the options for one file, sniffing its delimiter when
// configured to.
func (r *Runner) optionsFor(src *Source) csv.Options {
	opts := r.cfg.Options
	if !r.cfg.SniffDelimiter {
		return opts
	}
	sample := src.Text
	if len(sample) > sniffSample {
		sample = sample[:sniffSample]
	}
	if d, ok := csv.NewSniffer(sample).DetectDelimiter(); ok {
		opts.Delimiter = d
		r.logger.Debug("delimiter sniffed", zap.String("file", src.Name), zap.String("delimiter", csv.DelimiterName(d)))
	}
	return opts
}

// Check validates every matching file in dir.
func (r *Runner) Check(ctx context.Context, dir string) ([]csv.FileReport, error) {
	paths, err := r.list(dir)
	if err != nil {
		return nil, err
	}
	reports := make([]csv.FileReport, len(paths))
	err = r.forEach(ctx, paths, func(ctx context.Context, i int, path string) {
		reports[i] = r.checkFile(ctx, path)
	})
	if err != nil {
		return nil, err
	}

	bad := 0
	for _, rep := range reports {
		if !rep.OK {
			bad++
		}
	}
	r.logger.Info("check finished", zap.Int("files", len(reports)), zap.Int("not_ok", bad))
	return reports, nil
}

func (r *Runner) checkFile(ctx context.Context, path string) csv.FileReport {
	start := time.Now()
	name := filepath.Base(path)
	fail := func(err error) csv.FileReport {
		r.logger.Warn("file failed", zap.String("file", name), zap.Error(err))
		return csv.FileReport{Filename: name, Err: err}
	}

	src, err := Load(path)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	opts := r.optionsFor(src)

	var rows []csv.Row
	if r.cfg.Reconstruct {
		doc, err := csv.Reconstruct(src.Text, opts)
		if err != nil {
			return fail(&FileError{Path: path, Stage: StageReconstruct, Err: err})
		}
		rows = doc.Rows
	} else {
		rows, err = csv.ReadAll(strings.NewReader(src.Text), opts)
		if err != nil {
			return fail(&FileError{Path: path, Stage: StageParse, Err: err})
		}
	}

	report, err := csv.Check(name, rows, opts)
	if err != nil {
		return fail(&FileError{Path: path, Stage: StageCheck, Err: err})
	}
	r.logger.Debug("file checked",
		zap.String("file", name),
		zap.Bool("ok", report.OK),
		zap.Int("expected", report.Expected),
		zap.Int("rows", report.Total()),
		zap.Duration("elapsed", time.Since(start)))
	return report
}

// ColumnCount is how many rows of a repaired file have a given field count.
type ColumnCount struct {
	Columns int
	Rows    int
}

// ReconstructResult describes one repaired file.
type ReconstructResult struct {
	Name   string
	Output string
	Info   FileInfo
	// Structure counts rows by field count, header included, in first-seen
	// order.
	Structure []ColumnCount
	Stats     map[string]int
	Err       error
}

// StructureOK reports whether every row has the same field count.
func (r ReconstructResult) StructureOK() bool {
	return r.Err == nil && len(r.Structure) == 1
}

// Reconstruct repairs every matching file in dir and writes the results to
// outDir as name_l.ext.
func (r *Runner) Reconstruct(ctx context.Context, dir, outDir string) ([]ReconstructResult, error) {
	paths, err := r.list(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	results := make([]ReconstructResult, len(paths))
	err = r.forEach(ctx, paths, func(ctx context.Context, i int, path string) {
		results[i] = r.reconstructFile(ctx, path, outDir)
	})
	if err != nil {
		return nil, err
	}

	ragged := 0
	for _, res := range results {
		if !res.StructureOK() {
			ragged++
		}
	}
	r.logger.Info("reconstruct finished", zap.Int("files", len(results)), zap.Int("ragged", ragged))
	return results, nil
}

func (r *Runner) reconstructFile(ctx context.Context, path, outDir string) ReconstructResult {
	start := time.Now()
	res := ReconstructResult{Name: filepath.Base(path)}
	fail := func(err error) ReconstructResult {
		r.logger.Warn("file failed", zap.String("file", res.Name), zap.Error(err))
		res.Err = err
		return res
	}

	src, err := Load(path)
	if err != nil {
		return fail(err)
	}
	res.Info = src.Info
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	doc, err := csv.Reconstruct(src.Text, r.optionsFor(src))
	if err != nil {
		return fail(&FileError{Path: path, Stage: StageReconstruct, Err: err})
	}
	res.Stats = doc.Stats
	res.Structure = structureOf(doc.Rows)

	res.Output = filepath.Join(outDir, OutputName(res.Name))
	err = WriteFileAtomic(ctx, res.Output, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
	if err != nil {
		return fail(&FileError{Path: res.Output, Stage: StageWrite, Err: err})
	}

	r.logger.Debug("file reconstructed",
		zap.String("file", res.Name),
		zap.String("output", res.Output),
		zap.Int("rows", len(doc.Rows)),
		zap.Bool("separator_dropped", doc.SeparatorDropped),
		zap.Int("null_fields", doc.NullFields),
		zap.Any("rules", doc.Stats),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

func structureOf(rows []csv.Row) []ColumnCount {
	var out []ColumnCount
	index := make(map[int]int)
	for _, row := range rows {
		n := row.Len()
		i, ok := index[n]
		if !ok {
			i = len(out)
			index[n] = i
			out = append(out, ColumnCount{Columns: n})
		}
		out[i].Rows++
	}
	return out
}

// InfoResult describes one input file for the info report.
type InfoResult struct {
	Name string
	Info FileInfo
	Err  error
}

// Info inspects every matching file in dir of at least MinSize bytes.
func (r *Runner) Info(ctx context.Context, dir string) ([]InfoResult, error) {
	paths, err := r.list(dir)
	if err != nil {
		return nil, err
	}
	results := make([]InfoResult, len(paths))
	err = r.forEach(ctx, paths, func(ctx context.Context, i int, path string) {
		res := InfoResult{Name: filepath.Base(path)}
		src, err := Load(path)
		if err != nil {
			r.logger.Warn("file failed", zap.String("file", res.Name), zap.Error(err))
			res.Err = err
		} else {
			res.Info = src.Info
		}
		results[i] = res
	})
	if err != nil {
		return nil, err
	}

	kept := results[:0]
	for _, res := range results {
		if res.Err == nil && res.Info.Size < r.cfg.MinSize {
			continue
		}
		kept = append(kept, res)
	}
	return kept, nil
}
