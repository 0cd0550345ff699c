package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/plx-project/plx/internal/walk"
)

// ExoFile is the name of the exercise descriptor inside an exercise directory.
const ExoFile = "exo.yaml"

var sourceExts = []string{".c", ".cc", ".cpp", ".h", ".hpp"}

// Exo is one exercise: a set of source files the learner edits and a list of
// checks the compiled program must pass.
type Exo struct {
	Name        string   `yaml:"name"`
	Instruction string   `yaml:"instruction,omitempty"`
	Main        string   `yaml:"main,omitempty"`
	Files       []string `yaml:"files,omitempty"`
	Checks      []Check  `yaml:"checks"`
	// Solution is a reference implementation, never compiled with Files.
	Solution string `yaml:"solution,omitempty"`

	// Dir is the exercise directory, Files are relative to it.
	Dir string `yaml:"-"`
	// Skill is the name of the directory grouping exercises, empty for
	// exercises at the project root.
	Skill string `yaml:"-"`
}

// Check runs the compiled exercise with Args and compares its output with Expected.
type Check struct {
	Name     string   `yaml:"name"`
	Args     []string `yaml:"args,omitempty"`
	Expected string   `yaml:"expected"`
}

// ID is a human readable identifier, unique within a project.
func (e Exo) ID() string {
	if e.Skill == "" {
		return filepath.Base(e.Dir)
	}
	return e.Skill + "/" + filepath.Base(e.Dir)
}

// Sources returns paths of all exercise files.
func (e Exo) Sources() []string {
	ret := make([]string, len(e.Files))
	for i, f := range e.Files {
		ret[i] = filepath.Join(e.Dir, f)
	}
	return ret
}

// MainFile returns the path of the file opened in the editor: Main if set,
// otherwise the first main.* file, otherwise the first file.
func (e Exo) MainFile() string {
	if e.Main != "" {
		return filepath.Join(e.Dir, e.Main)
	}
	for _, f := range e.Files {
		if strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)) == "main" {
			return filepath.Join(e.Dir, f)
		}
	}
	if len(e.Files) == 0 {
		return ""
	}
	return filepath.Join(e.Dir, e.Files[0])
}

// SolutionPath returns the path of the solution file, empty if there is none.
func (e Exo) SolutionPath() string {
	if e.Solution == "" {
		return ""
	}
	return filepath.Join(e.Dir, e.Solution)
}

// LoadExo reads dir/exo.yaml from fsys. Missing optional fields are filled in:
// the name defaults to the directory name, the file list to every C/C++
// source in the directory and the solution to the first *.sol.* source.
func LoadExo(fsys afero.Fs, dir string) (Exo, error) {
	dir = filepath.Clean(dir)
	b, err := afero.ReadFile(fsys, filepath.Join(dir, ExoFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Exo{}, fmt.Errorf("%s: %w", dir, ErrNoExo)
		}
		return Exo{}, fmt.Errorf("reading %s: %w", filepath.Join(dir, ExoFile), err)
	}

	var exo Exo
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&exo); err != nil {
		if errors.Is(err, io.EOF) {
			return Exo{}, fmt.Errorf("%s: empty %s: %w", dir, ExoFile, ErrInvalidExo)
		}
		return Exo{}, fmt.Errorf("%s: parsing %s: %w: %w", dir, ExoFile, ErrInvalidExo, err)
	}
	exo.Dir = dir
	exo.Skill = filepath.Base(filepath.Dir(dir))

	if exo.Name == "" {
		exo.Name = filepath.Base(dir)
	}
	if len(exo.Files) == 0 || exo.Solution == "" {
		files, solution, err := sources(fsys, dir)
		if err != nil {
			return Exo{}, err
		}
		if len(exo.Files) == 0 {
			exo.Files = files
		}
		if exo.Solution == "" && !slices.Contains(exo.Files, solution) {
			exo.Solution = solution
		}
	}
	if len(exo.Files) == 0 {
		return Exo{}, fmt.Errorf("%s: %w", dir, ErrNoSources)
	}

	var errs []error
	for _, f := range exo.Files {
		if _, err := fsys.Stat(filepath.Join(dir, f)); err != nil {
			errs = append(errs, fmt.Errorf("file %s: %w", f, err))
		}
	}
	if exo.Main != "" && !slices.Contains(exo.Files, exo.Main) {
		errs = append(errs, fmt.Errorf("main %s is not listed in files", exo.Main))
	}
	if exo.Solution != "" {
		if slices.Contains(exo.Files, exo.Solution) {
			errs = append(errs, fmt.Errorf("solution %s is listed in files", exo.Solution))
		} else if _, err := fsys.Stat(exo.SolutionPath()); err != nil {
			errs = append(errs, fmt.Errorf("solution %s: %w", exo.Solution, err))
		}
	}
	for i := range exo.Checks {
		if exo.Checks[i].Name == "" {
			exo.Checks[i].Name = "check " + strconv.Itoa(i+1)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Exo{}, fmt.Errorf("%s: %w: %w", dir, ErrInvalidExo, err)
	}
	return exo, nil
}

// isSolution matches main.sol.cpp, util.sol.h and the like.
func isSolution(name string) bool {
	return strings.Contains(name, ".sol.")
}

// sources lists the C/C++ sources of dir in lexical order. Solution files are
// left out, the first one is returned as solution.
func sources(fsys afero.Fs, dir string) (files []string, solution string, err error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, "", fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, info := range infos {
		name := info.Name()
		if !info.Mode().IsRegular() || !slices.Contains(sourceExts, filepath.Ext(name)) {
			continue
		}
		if !isSolution(name) {
			files = append(files, name)
			continue
		}
		if solution != "" {
			slog.Warn("more than one solution file, ignoring", "dir", dir, "file", name, "solution", solution)
			continue
		}
		solution = name
	}
	return files, solution, nil
}

func skill(projectDir, exoDir string) string {
	if exoDir == projectDir {
		return ""
	}
	rel, err := filepath.Rel(projectDir, filepath.Dir(exoDir))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Project is a directory tree of exercises.
type Project struct {
	Dir  string
	Exos []Exo
	// Problems holds load errors of exercises which were skipped.
	Problems []error
}

// LoadProject walks dir and loads every exercise found. Broken exercises are
// reported in Project.Problems, an error is returned only when no exercise
// could be loaded at all.
func LoadProject(ctx context.Context, fsys afero.Fs, dir string) (Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Project{}, fmt.Errorf("resolving %s: %w", dir, err)
	}
	p := Project{Dir: abs}

	root := afero.NewIOFS(afero.NewBasePathFs(fsys, abs))
	for path, err := range walk.FS(ctx, root, abs) {
		if err != nil {
			slog.WarnContext(ctx, "walking project", "dir", abs, "error", err)
			continue
		}
		if filepath.Base(path) != ExoFile {
			continue
		}
		exoDir := filepath.Dir(path)
		exo, err := LoadExo(fsys, exoDir)
		if err != nil {
			p.Problems = append(p.Problems, err)
			continue
		}
		exo.Skill = skill(abs, exoDir)
		p.Exos = append(p.Exos, exo)
	}
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}

	if len(p.Exos) == 0 {
		return p, fmt.Errorf("%s: %w", abs, errors.Join(append([]error{ErrNoExo}, p.Problems...)...))
	}
	return p, nil
}
