package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticAsset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("js"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("shell"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "main.css"), []byte("css"), 0o644))

	require.Equal(t, filepath.Join(dir, "app.js"), staticAsset(dir, "/app.js"))
	require.Equal(t, filepath.Join(dir, "css", "main.css"), staticAsset(dir, "/css/main.css"))

	// The shell is never served as a plain asset; it sits behind the gate.
	require.Empty(t, staticAsset(dir, "/"))
	require.Empty(t, staticAsset(dir, "/index.html"))
	require.Empty(t, staticAsset(dir, "/css/../index.html"))

	// Directories and misses are not assets.
	require.Empty(t, staticAsset(dir, "/css"))
	require.Empty(t, staticAsset(dir, "/missing.js"))

	// Traversal stays inside the static dir.
	require.Empty(t, staticAsset(dir, "/../../etc/passwd"))
}
