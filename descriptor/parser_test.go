package descriptor

import (
	"errors"
	"testing"

	"github.com/goldrun/goldrun/model"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainName(t *testing.T) {
	d, err := Parse("suite/baz.input")
	require.NoError(t, err)
	require.Equal(t, "baz", d.Name)
	require.Equal(t, "suite/baz.input", d.InputPath)
	require.Equal(t, "suite/baz.output", d.OutputPath)
	require.Equal(t, 1, d.ProcessCount)
	require.False(t, d.ExpectError)
	require.Nil(t, d.Restart)
	require.Empty(t, d.IgnoredTags)
}

func TestParse_Tags(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		check func(t *testing.T, d *model.Descriptor)
	}{
		{
			name: "mpirun",
			path: "foo.mpirun=4.input",
			check: func(t *testing.T, d *model.Descriptor) {
				require.Equal(t, "foo", d.Name)
				require.Equal(t, 4, d.ProcessCount)
			},
		},
		{
			name: "expect_error",
			path: "bar.expect_error=True.input",
			check: func(t *testing.T, d *model.Descriptor) {
				require.True(t, d.ExpectError)
			},
		},
		{
			name: "restart",
			path: "qux.restart=2.input",
			check: func(t *testing.T, d *model.Descriptor) {
				require.NotNil(t, d.Restart)
				require.Equal(t, 2, d.Restart.Index)
			},
		},
		{
			name: "combined",
			path: "sim.mpirun=8.restart=1.expect_error=True.input",
			check: func(t *testing.T, d *model.Descriptor) {
				require.Equal(t, "sim", d.Name)
				require.Equal(t, 8, d.ProcessCount)
				require.True(t, d.ExpectError)
				require.Equal(t, 1, d.Restart.Index)
			},
		},
		{
			name: "unknown tags preserved in order",
			path: "foo.slow.gpu=off.mpirun=2.input",
			check: func(t *testing.T, d *model.Descriptor) {
				require.Equal(t, []string{"slow", "gpu=off"}, d.IgnoredTags)
				require.Equal(t, 2, d.ProcessCount)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Parse(tc.path)
			require.NoError(t, err)
			tc.check(t, d)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		segment string
	}{
		{name: "mpirun non-numeric", path: "foo.mpirun=abc.input", segment: "mpirun=abc"},
		{name: "mpirun zero", path: "foo.mpirun=0.input", segment: "mpirun=0"},
		{name: "mpirun negative", path: "foo.mpirun=-2.input", segment: "mpirun=-2"},
		{name: "mpirun missing value", path: "foo.mpirun.input", segment: "mpirun"},
		{name: "expect_error lowercase", path: "foo.expect_error=true.input", segment: "expect_error=true"},
		{name: "expect_error missing value", path: "foo.expect_error.input", segment: "expect_error"},
		{name: "restart non-numeric", path: "foo.restart=x.input", segment: "restart=x"},
		{name: "restart zero", path: "foo.restart=0.input", segment: "restart=0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Parse(tc.path)
			require.Nil(t, d, "parser must never partially construct a descriptor")

			var derr *model.DescriptorError
			require.True(t, errors.As(err, &derr))
			require.Equal(t, tc.segment, derr.Segment)
		})
	}
}

func TestParse_NotAnInputFile(t *testing.T) {
	_, err := Parse("foo.output")
	var derr *model.DescriptorError
	require.True(t, errors.As(err, &derr))

	_, err = Parse(".input")
	require.True(t, errors.As(err, &derr))
}

func TestName(t *testing.T) {
	require.Equal(t, "foo", Name("dir/foo.mpirun=4.input"))
	require.Equal(t, "bar", Name("bar.input"))
}
