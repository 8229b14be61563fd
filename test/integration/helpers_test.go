//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds the isolated directories one test works in.
type testEnv struct {
	HomeDir    string // PYBOOT_HOME, config and provision stamp
	ProjectDir string // project root with manifest and sources
	BinDir     string // prepended to PATH, holds the fake tools
	RecordFile string // fake tools append their argv here
}

// setupTestEnv creates isolated temp directories and environment so the
// tool never touches the real home, interpreter discovery, or package
// manager detection.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
		BinDir:     t.TempDir(),
	}
	env.RecordFile = filepath.Join(t.TempDir(), "record.log")

	t.Setenv("PYBOOT_HOME", env.HomeDir)
	t.Setenv("PYBOOT_PYTHON", "")
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("FAKE_RECORD", env.RecordFile)
	t.Setenv("FAKE_PIP_EXIT", "0")

	return env
}

// fakePythonScript stands in for python3. It answers the version probe,
// fabricates venv layouts, records pip calls, and executes entry points
// with /bin/sh.
const fakePythonScript = `#!/bin/sh
case "$1" in
  -c)
    echo "3.11.4"
    exit 0
    ;;
  -m)
    shift
    case "$1" in
      venv)
        shift
        dir=
        clear=0
        for a in "$@"; do
          [ "$a" = "--clear" ] && clear=1
          dir="$a"
        done
        [ "$clear" = "1" ] && rm -rf "$dir"
        mkdir -p "$dir/bin"
        printf 'home = /usr/bin\nversion = 3.11.4\n' > "$dir/pyvenv.cfg"
        cp "$0" "$dir/bin/python"
        chmod +x "$dir/bin/python"
        exit 0
        ;;
      pip)
        shift
        echo "pip $*" >> "$FAKE_RECORD"
        case "$1" in
          list)
            printf '[{"name": "flask", "version": "2.2.0"}, {"name": "requests", "version": "2.31.0"}]\n'
            exit 0
            ;;
          install)
            exit "${FAKE_PIP_EXIT:-0}"
            ;;
        esac
        exit 0
        ;;
    esac
    exit 1
    ;;
  *)
    script="$1"
    shift
    exec /bin/sh "$script" "$@"
    ;;
esac
`

// installFakePython writes the python3 stand-in into env.BinDir.
func installFakePython(t *testing.T, env *testEnv) {
	t.Helper()
	path := filepath.Join(env.BinDir, "python3")
	if err := os.WriteFile(path, []byte(fakePythonScript), 0o755); err != nil {
		t.Fatalf("writing fake python: %v", err)
	}
}

// installFakeManager writes an apt-get stand-in that records its argv.
func installFakeManager(t *testing.T, env *testEnv) {
	t.Helper()
	script := "#!/bin/sh\necho \"apt-get $*\" >> \"$FAKE_RECORD\"\nexit 0\n"
	path := filepath.Join(env.BinDir, "apt-get")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake apt-get: %v", err)
	}
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// writeExecutable is writeFile with the exec bit set.
func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	writeFile(t, path, content)
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// readRecord returns the fake tools' recorded argv lines.
func readRecord(t *testing.T, env *testEnv) []byte {
	t.Helper()
	data, err := os.ReadFile(env.RecordFile)
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	return data
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
