package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/ir"
)

const helloCUE = `
#Return: {op: "return_void"}

program: classes: [{
	name:  "app.Hello"
	super: "java.lang.Object"
	source: "app/Hello.java"
	restrictions: ["RJavaCore"]
	methods: [{
		name:     "main"
		params:   ["java.lang.String[]"]
		return:   "void"
		static:   true
		concrete: true
		locals: [{name: "args", type: "java.lang.String[]"}]
		units: [
			{op: "identity", lhs: {kind: "local", name: "args"}, rhs: {kind: "param", param: 0, type: "java.lang.String[]"}},
			#Return,
		]
	}]
}]
`

const helloJSON = `{
  "classes": [
    {
      "name": "app.Hello",
      "super": "java.lang.Object",
      "methods": [
        {"name": "run", "return": "void", "static": true, "concrete": true, "units": [{"op": "return_void"}]}
      ]
    }
  ],
  "points_to": [{"method": "app.Hello.run()", "local": "x", "types": ["app.Hello"]}]
}`

func TestCompileString_CUE(t *testing.T) {
	prog, err := CompileString(helloCUE, "hello.cue")
	require.NoError(t, err)

	require.Len(t, prog.Classes, 1)
	c := prog.Classes[0]
	assert.Equal(t, "app.Hello", c.Name)
	assert.Equal(t, "app/Hello.java", c.Source)
	assert.Equal(t, []string{"RJavaCore"}, c.Restrictions)

	require.Len(t, c.Methods, 1)
	m := c.Methods[0]
	assert.True(t, m.Static)
	assert.Equal(t, []string{"java.lang.String[]"}, m.Params)
	require.Len(t, m.Units, 2)
	assert.Equal(t, ir.OpIdentity, m.Units[0].Op)
	assert.Equal(t, ir.KindParam, m.Units[0].RHS.Kind)
	assert.Equal(t, ir.OpReturnVoid, m.Units[1].Op)
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.json")
	require.NoError(t, os.WriteFile(path, []byte(helloJSON), 0644))

	prog, err := Load(path)
	require.NoError(t, err)
	require.Len(t, prog.Classes, 1)
	assert.Equal(t, "run", prog.Classes[0].Methods[0].Name)
	require.Len(t, prog.PointsTo, 1)
	assert.Equal(t, []string{"app.Hello"}, prog.PointsTo[0].Types)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.cue"), []byte(helloCUE), 0644))

	prog, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "app.Hello", prog.Classes[0].Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
		assert.True(t, IsLoadError(err, ErrCodeNotFound))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.True(t, IsLoadError(err, ErrCodeNoFiles))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hello.txt")
		require.NoError(t, os.WriteFile(path, []byte(helloJSON), 0644))
		_, err := Load(path)
		assert.True(t, IsLoadError(err, ErrCodeLoadFailed))
	})

	t.Run("syntax error has a position", func(t *testing.T) {
		_, err := CompileString("classes: [", "broken.cue")
		require.Error(t, err)

		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, ErrCodeBuildFailed, le.Code)
		assert.True(t, le.Pos.IsValid())
		assert.Contains(t, err.Error(), "broken.cue:")
	})

	t.Run("incomplete value", func(t *testing.T) {
		_, err := CompileString(`classes: [{name: string}]`, "open.cue")
		assert.True(t, IsLoadError(err, ErrCodeBuildFailed))
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := CompileString(`classes: [{name: 3}]`, "shape.cue")
		assert.True(t, IsLoadError(err, ErrCodeDecode))
	})

	t.Run("no classes", func(t *testing.T) {
		_, err := CompileString(`classes: []`, "empty.cue")
		assert.True(t, IsLoadError(err, ErrCodeNoClasses))
	})
}
