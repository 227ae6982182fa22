// Package srcpath locates the source files that define test functions,
// so submitted reports can carry a file path alongside the outcome.
package srcpath

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/mod/modfile"
)

// Resolver maps package import paths and test function names to the
// _test.go file defining them, relative to the module root. Resolution
// failures degrade to an empty path; they never block reporting.
type Resolver struct {
	workDir string
	log     log.Logger

	modulePath string
	cache      map[string]string
}

// NewResolver creates a resolver rooted at the given module directory.
func NewResolver(workDir string, logger log.Logger) *Resolver {
	return &Resolver{
		workDir: workDir,
		log:     logger,
		cache:   make(map[string]string),
	}
}

// TestFile returns the path of the _test.go file defining funcName in
// the given package, relative to the module root. It returns an empty
// string when the package or function cannot be located.
func (r *Resolver) TestFile(pkgPath, funcName string) string {
	key := pkgPath + "." + funcName
	if path, ok := r.cache[key]; ok {
		return path
	}

	path := r.resolve(pkgPath, funcName)
	r.cache[key] = path
	return path
}

func (r *Resolver) resolve(pkgPath, funcName string) string {
	relPath, err := r.packageDir(pkgPath)
	if err != nil {
		r.log.Debug("Could not resolve package directory", "package", pkgPath, "err", err)
		return ""
	}

	pkgDir := filepath.Join(r.workDir, relPath)
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		r.log.Debug("Could not read package directory", "dir", pkgDir, "err", err)
		return ""
	}

	fset := token.NewFileSet()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		filePath := filepath.Join(pkgDir, entry.Name())
		f, err := parser.ParseFile(fset, filePath, nil, 0)
		if err != nil {
			r.log.Debug("Could not parse test file", "file", filePath, "err", err)
			continue
		}

		for _, decl := range f.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			if funcDecl.Name.Name == funcName {
				return filepath.Join(relPath, entry.Name())
			}
		}
	}

	return ""
}

// packageDir translates an import path into a directory relative to
// the module root, reading the module path from go.mod on first use.
func (r *Resolver) packageDir(pkgPath string) (string, error) {
	if strings.HasPrefix(pkgPath, "./") {
		return strings.TrimPrefix(pkgPath, "./"), nil
	}

	if r.modulePath == "" {
		goModPath := filepath.Join(r.workDir, "go.mod")
		goModContent, err := os.ReadFile(goModPath)
		if err != nil {
			return "", err
		}
		modFile, err := modfile.Parse(goModPath, goModContent, nil)
		if err != nil {
			return "", err
		}
		r.modulePath = modFile.Module.Mod.Path
	}

	if pkgPath == r.modulePath {
		return ".", nil
	}
	if !strings.HasPrefix(pkgPath, r.modulePath+"/") {
		return "", os.ErrNotExist
	}
	return strings.TrimPrefix(pkgPath, r.modulePath+"/"), nil
}
