package report

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrValidation        = errors.New("invalid report request")
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrEmptyDataset      = errors.New("no records in the selected range")
	ErrMissingDataset    = errors.New("missing dataset")
	ErrRender            = errors.New("report rendering failed")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %s (only pdf is available)", ErrUnsupportedFormat, e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// EmptyDatasetError is returned when the range leaves nothing to report.
type EmptyDatasetError struct {
	Kind Kind
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no %s found in the selected range", e.Kind)
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// MissingDatasetError is returned by the accounts report when donations or
// expenses are empty for the range.
type MissingDatasetError struct {
	Missing []Kind
}

func (e *MissingDatasetError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = string(k)
	}
	return fmt.Sprintf("accounting report needs donations and expenses; none found for: %s", strings.Join(names, ", "))
}

func (e *MissingDatasetError) Is(target error) bool { return target == ErrMissingDataset }

// RenderError wraps a failure while building the document. Stage names the
// step that failed (logo, layout, pdf).
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s at %s: %v", ErrRender, e.Stage, e.Err)
}

func (e *RenderError) Is(target error) bool { return target == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }
