package srcpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module github.com/example/project\n\ngo 1.21\n"), 0644))

	pkgDir := filepath.Join(dir, "widgets")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "widgets_test.go"),
		[]byte("package widgets\n\nimport \"testing\"\n\nfunc TestWidget(t *testing.T) {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "gadgets_test.go"),
		[]byte("package widgets\n\nimport \"testing\"\n\nfunc TestGadget(t *testing.T) {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "widgets.go"),
		[]byte("package widgets\n"), 0644))

	return dir
}

func TestResolverTestFile(t *testing.T) {
	dir := setupModule(t)
	resolver := NewResolver(dir, log.New())

	assert.Equal(t, filepath.Join("widgets", "widgets_test.go"),
		resolver.TestFile("github.com/example/project/widgets", "TestWidget"))
	assert.Equal(t, filepath.Join("widgets", "gadgets_test.go"),
		resolver.TestFile("github.com/example/project/widgets", "TestGadget"))
}

func TestResolverUnknownFunction(t *testing.T) {
	dir := setupModule(t)
	resolver := NewResolver(dir, log.New())

	assert.Empty(t, resolver.TestFile("github.com/example/project/widgets", "TestMissing"))
}

func TestResolverUnknownPackage(t *testing.T) {
	dir := setupModule(t)
	resolver := NewResolver(dir, log.New())

	assert.Empty(t, resolver.TestFile("github.com/other/module/pkg", "TestWidget"))
	assert.Empty(t, resolver.TestFile("github.com/example/project/nonexistent", "TestWidget"))
}

func TestResolverRelativePackage(t *testing.T) {
	dir := setupModule(t)
	resolver := NewResolver(dir, log.New())

	assert.Equal(t, filepath.Join("widgets", "widgets_test.go"),
		resolver.TestFile("./widgets", "TestWidget"))
}

func TestResolverNoGoMod(t *testing.T) {
	resolver := NewResolver(t.TempDir(), log.New())

	assert.Empty(t, resolver.TestFile("github.com/example/project/widgets", "TestWidget"))
}

func TestResolverCaches(t *testing.T) {
	dir := setupModule(t)
	resolver := NewResolver(dir, log.New())

	first := resolver.TestFile("github.com/example/project/widgets", "TestWidget")
	// Removing the file does not change the cached answer.
	require.NoError(t, os.Remove(filepath.Join(dir, "widgets", "widgets_test.go")))
	second := resolver.TestFile("github.com/example/project/widgets", "TestWidget")
	assert.Equal(t, first, second)
}
