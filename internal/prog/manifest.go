package prog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"floatc/internal/ir"
)

// ManifestName is the file searched for by FindManifest.
const ManifestName = "floatc.toml"

// Manifest is a decoded floatc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Stmts   []StmtConfig  `toml:"stmt"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig holds defaults that command-line flags override.
type BuildConfig struct {
	Target   string `toml:"target"`
	Output   string `toml:"output"`
	Backend  string `toml:"backend"`
	Linkage  string `toml:"linkage"`
	Function string `toml:"function"`
	Cache    string `toml:"cache"`
}

// StmtConfig is one [[stmt]] table. Without let the expression is evaluated
// and discarded.
//
//	[[stmt]]
//	let  = "a"
//	expr = ["+", 8, ["*", 4, 2]]
type StmtConfig struct {
	Let  string `toml:"let"`
	Expr any    `toml:"expr"`
}

// FindManifest walks up from startDir looking for floatc.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes the manifest above startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifestFile(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadManifestFile decodes path and checks required keys.
func LoadManifestFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// OutputPath resolves [build].output against the manifest directory.
func (m *Manifest) OutputPath() string {
	out := m.Config.Build.Output
	if out == "" || filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}

// Program converts the [[stmt]] tables into a Program.
func (m *Manifest) Program() (*Program, error) {
	linkage, err := ir.ParseLinkage(m.Config.Build.Linkage)
	if err != nil {
		return nil, fmt.Errorf("%s: [build].linkage: %w", m.Path, err)
	}
	p := &Program{
		Name:     m.Config.Package.Name,
		Function: m.Config.Build.Function,
		Linkage:  linkage,
		Stmts:    make([]Stmt, 0, len(m.Config.Stmts)),
	}
	for i, sc := range m.Config.Stmts {
		if sc.Expr == nil {
			return nil, fmt.Errorf("%s: stmt %d: missing expr", m.Path, i)
		}
		e, err := ParseExpr(sc.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: stmt %d: %w", m.Path, i, err)
		}
		if sc.Let != "" {
			p.Stmts = append(p.Stmts, Assign{Name: sc.Let, Expr: e})
		} else {
			p.Stmts = append(p.Stmts, Eval{Expr: e})
		}
	}
	return p, nil
}

// ParseExpr converts a decoded TOML value: numbers are constants, strings
// read variables, and [op, lhs, rhs] arrays are binary operations.
func ParseExpr(v any) (Expr, error) {
	switch v := v.(type) {
	case int64:
		return Const{V: float32(v)}, nil
	case float64:
		return Const{V: float32(v)}, nil
	case string:
		if v == "" {
			return nil, fmt.Errorf("empty variable name")
		}
		return Var{Name: v}, nil
	case []any:
		if len(v) != 3 {
			return nil, fmt.Errorf("operation needs [op, lhs, rhs], got %d elements", len(v))
		}
		opText, ok := v[0].(string)
		if !ok {
			return nil, fmt.Errorf("operator must be a string, got %v", v[0])
		}
		// a single unsupported character is kept and reported when lowered
		op, err := ir.ParseBinOp(opText)
		if err != nil && len(opText) != 1 {
			return nil, fmt.Errorf("operator must be one character: %w", err)
		}
		l, err := ParseExpr(v[1])
		if err != nil {
			return nil, err
		}
		r, err := ParseExpr(v[2])
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, L: l, R: r}, nil
	}
	return nil, fmt.Errorf("unsupported expression value %v (%T)", v, v)
}
