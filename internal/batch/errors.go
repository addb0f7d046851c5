package batch

import "fmt"

// Stage names the step of a file's pass that failed.
type Stage string

const (
	StageRead        Stage = "read"
	StageDecode      Stage = "decode"
	StageParse       Stage = "parse"
	StageReconstruct Stage = "reconstruct"
	StageCheck       Stage = "check"
	StageWrite       Stage = "write"
)

// FileError is a per-file failure. It is reported in the file's row of the
// batch report and never stops the other files.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
