package values

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() Values {
	return Values{
		"name":     "myapp",
		"replicas": 2,
		"ratio":    1.5,
		"port":     float64(8080),
		"portStr":  "9090",
		"enabled":  true,
		"flagStr":  "false",
		"image": map[string]any{
			"repository": "ghcr.io/example/myapp",
			"tag":        1.2,
		},
		"env": Values{
			"LOG_LEVEL": "debug",
			"WORKERS":   4,
			"UNSET":     nil,
		},
		"args":    []any{"serve", 8080},
		"command": []string{"/bin/app"},
		"empty":   "",
		"null":    nil,
	}
}

func TestLookup(t *testing.T) {
	doc := testDoc()

	v, ok := doc.Lookup("image.repository")
	assert.True(t, ok)
	assert.Equal(t, "ghcr.io/example/myapp", v)

	_, ok = doc.Lookup("image.missing")
	assert.False(t, ok)

	_, ok = doc.Lookup("null")
	assert.False(t, ok, "null values are not present")

	_, ok = doc.Lookup("name.nested")
	assert.False(t, ok, "scalar intermediate")

	assert.True(t, doc.Has("env.LOG_LEVEL"))
	assert.False(t, doc.Has("env.UNSET"))
}

func TestString(t *testing.T) {
	doc := testDoc()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "string", path: "name", want: "myapp"},
		{name: "number formatted", path: "replicas", want: "2"},
		{name: "float formatted", path: "image.tag", want: "1.2"},
		{name: "bool formatted", path: "enabled", want: "true"},
		{name: "absent", path: "missing", want: ""},
		{name: "null", path: "null", want: ""},
		{name: "mapping is a mismatch", path: "image", wantErr: ErrTypeMismatch},
		{name: "sequence is a mismatch", path: "args", wantErr: ErrTypeMismatch},
		{name: "scalar intermediate is a mismatch", path: "name.first", wantErr: ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.String(tt.path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireString(t *testing.T) {
	doc := testDoc()

	got, err := doc.RequireString("image.repository")
	require.NoError(t, err)
	assert.Equal(t, "ghcr.io/example/myapp", got)

	for _, path := range []string{"missing", "empty", "null", "image.digest"} {
		_, err := doc.RequireString(path)
		require.Error(t, err, path)
		assert.ErrorIs(t, err, ErrMissingRequiredField)

		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, path, fe.Path)
	}
}

func TestInt(t *testing.T) {
	doc := testDoc()

	tests := []struct {
		name    string
		path    string
		want    int
		wantOK  bool
		wantErr bool
	}{
		{name: "int", path: "replicas", want: 2, wantOK: true},
		{name: "integral float", path: "port", want: 8080, wantOK: true},
		{name: "numeric string", path: "portStr", want: 9090, wantOK: true},
		{name: "absent", path: "missing"},
		{name: "null", path: "null"},
		{name: "fractional float", path: "ratio", wantErr: true},
		{name: "word", path: "name", wantErr: true},
		{name: "mapping", path: "image", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := doc.Int(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBool(t *testing.T) {
	doc := testDoc()

	b, ok, err := doc.Bool("enabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	b, ok, err = doc.Bool("flagStr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, b)

	_, ok, err = doc.Bool("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = doc.Bool("name")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	b, err = doc.BoolOr("missing", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestMapAccessors(t *testing.T) {
	doc := testDoc()

	t.Run("map", func(t *testing.T) {
		m, err := doc.Map("image")
		require.NoError(t, err)
		assert.Equal(t, "ghcr.io/example/myapp", m["repository"])

		m, err = doc.Map("missing")
		require.NoError(t, err)
		assert.Nil(t, m)

		_, err = doc.Map("name")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("string map skips nulls and formats scalars", func(t *testing.T) {
		m, err := doc.StringMap("env")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"LOG_LEVEL": "debug", "WORKERS": "4"}, m)
	})

	t.Run("string map with nested mapping", func(t *testing.T) {
		bad := Values{"env": map[string]any{"NESTED": map[string]any{"a": 1}}}
		_, err := bad.StringMap("env")
		require.Error(t, err)

		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "env.NESTED", fe.Path)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("string slice", func(t *testing.T) {
		s, err := doc.StringSlice("args")
		require.NoError(t, err)
		assert.Equal(t, []string{"serve", "8080"}, s)

		s, err = doc.StringSlice("command")
		require.NoError(t, err)
		assert.Equal(t, []string{"/bin/app"}, s)

		_, err = doc.StringSlice("name")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestFieldError(t *testing.T) {
	t.Run("message format", func(t *testing.T) {
		err := Mismatch("ingress.host", "string", map[string]any{})
		assert.Equal(t, "ingress.host: type mismatch: expected string, got mapping", err.Error())
	})

	t.Run("generator stamped once", func(t *testing.T) {
		err := WithGenerator(Missing("image.repository"), "workload")
		err = WithGenerator(err, "bundle")
		assert.Equal(t, "workload: image.repository: missing required field", err.Error())
	})

	t.Run("non field errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, WithGenerator(plain, "workload"))
	})
}
