package descriptor

// This file contains the pure filename parser that turns a dotted-tag
// input file name into a Descriptor.

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goldrun/goldrun/model"
)

const (
	// InputSuffix marks the file that drives a test
	InputSuffix = ".input"
	// OutputSuffix marks the golden file a test's output is compared against
	OutputSuffix = ".output"
	// ActualSuffix marks the captured output a run produces next to its input
	ActualSuffix = ".actual"
)

// Parse turns an input file path of the form base.(tag=value|tag)*.input
// into a Descriptor. Recognized dotted tags are mpirun=<positive integer>,
// expect_error=True and restart=<positive integer>; any other segment is
// preserved verbatim as an ignored tag. Parsing never touches the
// filesystem; companion-file existence is checked by the discovery driver.
func Parse(inputPath string) (*model.Descriptor, error) {
	base := filepath.Base(inputPath)
	if !strings.HasSuffix(base, InputSuffix) {
		return nil, &model.DescriptorError{
			Path:   inputPath,
			Reason: "input file name must end in " + InputSuffix,
		}
	}

	stem := strings.TrimSuffix(base, InputSuffix)
	segments := strings.Split(stem, ".")
	if segments[0] == "" {
		return nil, &model.DescriptorError{
			Path:   inputPath,
			Reason: "empty test name",
		}
	}

	d := &model.Descriptor{
		Name:         segments[0],
		InputPath:    inputPath,
		OutputPath:   strings.TrimSuffix(inputPath, InputSuffix) + OutputSuffix,
		ProcessCount: 1,
	}

	for _, seg := range segments[1:] {
		key, value, hasValue := strings.Cut(seg, "=")
		switch key {
		case "mpirun":
			n, err := parsePositiveInt(value, hasValue)
			if err != nil {
				return nil, &model.DescriptorError{
					Path:    inputPath,
					Segment: seg,
					Reason:  "mpirun requires a positive integer",
				}
			}
			d.ProcessCount = n
		case "expect_error":
			// The literal True is case-sensitive.
			if !hasValue || value != "True" {
				return nil, &model.DescriptorError{
					Path:    inputPath,
					Segment: seg,
					Reason:  "expect_error requires the literal value True",
				}
			}
			d.ExpectError = true
		case "restart":
			n, err := parsePositiveInt(value, hasValue)
			if err != nil {
				return nil, &model.DescriptorError{
					Path:    inputPath,
					Segment: seg,
					Reason:  "restart requires a positive integer",
				}
			}
			d.Restart = &model.Restart{Index: n}
		default:
			d.IgnoredTags = append(d.IgnoredTags, seg)
		}
	}

	return d, nil
}

// Name extracts the test name from an input file path without building a
// full descriptor. Used to apply include/exclude filters before parsing.
func Name(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), InputSuffix)
	name, _, _ := strings.Cut(stem, ".")
	return name
}

func parsePositiveInt(value string, hasValue bool) (int, error) {
	if !hasValue {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
