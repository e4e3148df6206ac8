package tsbridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/treepath"
)

const goSample = `package demo

type Server struct{}

func (s *Server) Start() {
	if ready() {
		println("up")
	}
	for i := 0; i < 3; i++ {
		println(i)
	}
}

func helper() bool { return true }
`

func parseGo(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := ParseSource(context.Background(), []byte(goSample), "go", "demo.go")
	require.NoError(t, err)
	return snap
}

func TestParseSource_NormalizesTags(t *testing.T) {
	snap := parseGo(t)
	assert.Equal(t, "file", snap.Root.Kind())

	methods, err := treepath.Find("//method", snap.Root)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "Start", methods[0].Name())

	funcs, err := treepath.Find("//function[@name='helper']", snap.Root)
	require.NoError(t, err)
	assert.Len(t, funcs, 1)

	ifs, err := treepath.Find("//method[@name='Start']//if", snap.Root)
	require.NoError(t, err)
	require.Len(t, ifs, 1)
	assert.Equal(t, "if", ifs[0].Kind())
}

func TestParseSource_StructTag(t *testing.T) {
	snap := parseGo(t)
	structs, err := treepath.Find("//struct", snap.Root)
	require.NoError(t, err)
	require.Len(t, structs, 1)
	assert.Equal(t, "Server", structs[0].Name())
}

func TestParseSource_GoVisibilityModifiers(t *testing.T) {
	snap := parseGo(t)

	public, err := treepath.Find("//method[public]", snap.Root)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Start", public[0].Name())

	private, err := treepath.Find("//function[not(public)]", snap.Root)
	require.NoError(t, err)
	require.Len(t, private, 1)
	assert.Equal(t, "helper", private[0].Name())
}

func TestParseSource_StablePathRoundTrip(t *testing.T) {
	snap := parseGo(t)
	ifs, err := treepath.Find("//if", snap.Root)
	require.NoError(t, err)
	require.Len(t, ifs, 1)

	path := treepath.StablePath(ifs[0], nil)
	assert.Equal(t, "/Start/block[1]/if[1]", path)

	// The address survives re-parsing, which is the reattachment story for
	// node identity across snapshots.
	snap2 := parseGo(t)
	node, ok := treepath.ResolvePath(snap2.Root, path)
	require.True(t, ok)
	assert.Equal(t, "if", node.Kind())
	assert.NotSame(t, ifs[0], node)
}

func TestParseSource_TextAndSpan(t *testing.T) {
	snap := parseGo(t)
	ifs, err := treepath.Find("//if[@contains='up']", snap.Root)
	require.NoError(t, err)
	require.Len(t, ifs, 1)

	assert.Contains(t, ifs[0].Text(), `println("up")`)
	assert.Equal(t, 6, ifs[0].Span().Start.Line)
	assert.Equal(t, "go", ifs[0].Language())
}

func TestNodeAt(t *testing.T) {
	snap := parseGo(t)

	n := snap.NodeAt(7, 4)
	require.NotNil(t, n)
	found := false
	for cur := treepath.Node(n); cur != nil; cur = cur.Parent() {
		if cur.Kind() == "if" {
			found = true
			break
		}
	}
	assert.True(t, found, "position inside the if body resolves within the if")

	assert.Nil(t, snap.NodeAt(999, 0))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.go")
	require.NoError(t, os.WriteFile(path, []byte(goSample), 0o644))

	snap, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "go", snap.Language)
	assert.Equal(t, path, snap.File)
	assert.NotEmpty(t, snap.ID)

	_, err = ParseFile(context.Background(), filepath.Join(dir, "unknown.zig"))
	require.Error(t, err)
}

func TestLanguageForFile(t *testing.T) {
	for path, want := range map[string]string{
		"a/b.go": "go",
		"x.PY":   "python",
		"X.java": "java",
		"ui.jsx": "javascript",
	} {
		lang, ok := LanguageForFile(path)
		require.True(t, ok, path)
		assert.Equal(t, want, lang, path)
	}
	_, ok := LanguageForFile("no-extension")
	assert.False(t, ok)
}

func TestParseSource_Python(t *testing.T) {
	src := `class Greeter:
    async def greet(self):
        if True:
            print("hi")
`
	snap, err := ParseSource(context.Background(), []byte(src), "python", "greeter.py")
	require.NoError(t, err)

	classes, err := treepath.Find("//class", snap.Root)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Greeter", classes[0].Name())

	async, err := treepath.Find("//function[async]", snap.Root)
	require.NoError(t, err)
	require.Len(t, async, 1)
	assert.Equal(t, "greet", async[0].Name())
}
