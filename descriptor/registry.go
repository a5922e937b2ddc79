package descriptor

// This file contains the discovery registry: it walks a suite directory,
// pairs input files with their golden files and executable, and applies the
// include/exclude filters.

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
)

// Options configures a discovery pass.
type Options struct {
	// Include is a glob pattern a test name must match to be scheduled;
	// empty means every name matches
	Include string
	// Exclude is a glob pattern that removes matching test names
	Exclude string
	// Executable, when set, backs every discovered test instead of the
	// per-directory convention
	Executable string
}

// Registry is the concrete set of discovered tests for one run, in
// deterministic walk order, together with the per-test discovery problems.
type Registry struct {
	Tests    []*model.Descriptor
	Problems []*model.DescriptorError
}

// Discover walks root for *.input files and builds the registry. A
// malformed name or missing companion file is recorded as a problem and
// does not abort discovery of the remaining tests. Filtered-out tests are
// absent entirely, problems included.
func Discover(logger zerolog.Logger, root string, opts Options) (*Registry, error) {
	reg := &Registry{}
	executables := map[string]resolvedExecutable{}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), InputSuffix) {
			return nil
		}

		name := Name(p)
		if skip, ferr := filteredOut(name, opts); ferr != nil {
			return ferr
		} else if skip {
			logger.Debug().Str("test", name).Msg("Filtered out")
			return nil
		}

		desc, perr := Parse(p)
		if perr != nil {
			reg.addProblem(perr)
			return nil
		}

		if _, serr := os.Stat(desc.OutputPath); serr != nil {
			reg.addProblem(&model.DescriptorError{
				Path:   p,
				Reason: "missing golden file " + filepath.Base(desc.OutputPath),
			})
			return nil
		}

		dir := filepath.Dir(p)
		exe, ok := executables[dir]
		if !ok {
			exe = resolveExecutable(dir, opts.Executable)
			executables[dir] = exe
		}
		if exe.err != nil {
			reg.addProblem(&model.DescriptorError{Path: p, Reason: exe.err.Error()})
			return nil
		}
		desc.ExecutablePath = exe.path

		logger.Debug().
			Str("test", desc.Name).
			Int("procs", desc.ProcessCount).
			Str("executable", desc.ExecutablePath).
			Msg("Discovered test")
		reg.Tests = append(reg.Tests, desc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	logger.Info().
		Int("tests", len(reg.Tests)).
		Int("problems", len(reg.Problems)).
		Msg("Discovery complete")
	return reg, nil
}

func (r *Registry) addProblem(err error) {
	if derr, ok := err.(*model.DescriptorError); ok {
		r.Problems = append(r.Problems, derr)
		return
	}
	r.Problems = append(r.Problems, &model.DescriptorError{Reason: err.Error()})
}

func filteredOut(name string, opts Options) (bool, error) {
	if opts.Include != "" {
		ok, err := path.Match(opts.Include, name)
		if err != nil {
			return false, fmt.Errorf("bad include pattern %q: %w", opts.Include, err)
		}
		if !ok {
			return true, nil
		}
	}
	if opts.Exclude != "" {
		ok, err := path.Match(opts.Exclude, name)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %q: %w", opts.Exclude, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type resolvedExecutable struct {
	path string
	err  error
}

// resolveExecutable finds the single executable file in a test directory.
// One executable backs every descriptor in its directory; an override path
// short-circuits the convention.
func resolveExecutable(dir, override string) resolvedExecutable {
	if override != "" {
		return resolvedExecutable{path: override}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return resolvedExecutable{err: err}
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.HasSuffix(e.Name(), InputSuffix) ||
			strings.HasSuffix(e.Name(), OutputSuffix) ||
			strings.HasSuffix(e.Name(), ActualSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, e.Name()))
	}

	switch len(candidates) {
	case 0:
		return resolvedExecutable{err: fmt.Errorf("no executable found in %s", dir)}
	case 1:
		return resolvedExecutable{path: candidates[0]}
	default:
		return resolvedExecutable{err: fmt.Errorf("multiple executables found in %s", dir)}
	}
}
