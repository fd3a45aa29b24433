package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starburst997/charts-library/internal/values"
)

// fakeDecryptor returns fixed plaintext and records the files it saw.
type fakeDecryptor struct {
	plain []byte
	err   error
	seen  []string
}

func (f *fakeDecryptor) Decrypt(_ context.Context, path string, _ []byte) ([]byte, error) {
	f.seen = append(f.seen, filepath.Base(path))
	return f.plain, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const encryptedDoc = `registry:
  token: ENC[AES256_GCM,data:abc,iv:def,tag:ghi,type:str]
sops:
  mac: ENC[AES256_GCM,data:xyz,type:str]
  version: 3.11.0
`

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		want bool
	}{
		{name: "plain yaml", path: "values.yaml", data: "name: myapp\n", want: false},
		{name: "sops suffix", path: "secrets.sops.yaml", data: "name: myapp\n", want: true},
		{name: "sops yml suffix", path: "prod.SOPS.yml", data: "", want: true},
		{name: "sops metadata", path: "secrets.yaml", data: encryptedDoc, want: true},
		{name: "sops key without mac", path: "values.yaml", data: "sops:\n  enabled: true\n", want: false},
		{name: "sops key scalar", path: "values.yaml", data: "sops: yes\n", want: false},
		{name: "invalid yaml", path: "values.yaml", data: "a: [", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEncrypted(tt.path, []byte(tt.data)))
		})
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain file skips decryption", func(t *testing.T) {
		fake := &fakeDecryptor{}
		path := writeFile(t, dir, "values.yaml", "name: myapp\nreplicas: 2\n")

		got, err := NewLoader(fake).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, values.Values{"name": "myapp", "replicas": 2}, got)
		assert.Empty(t, fake.seen)
	})

	t.Run("encrypted file is decrypted", func(t *testing.T) {
		fake := &fakeDecryptor{plain: []byte("registry:\n  token: ci/token\n")}
		path := writeFile(t, dir, "secrets.yaml", encryptedDoc)

		got, err := NewLoader(fake).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, []string{"secrets.yaml"}, fake.seen)

		token, err := got.String("registry.token")
		require.NoError(t, err)
		assert.Equal(t, "ci/token", token)
	})

	t.Run("decrypt error", func(t *testing.T) {
		boom := errors.New("no key")
		path := writeFile(t, dir, "broken.sops.yaml", "a: b\n")

		_, err := NewLoader(&fakeDecryptor{err: boom}).Load(context.Background(), path)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(&fakeDecryptor{}).Load(context.Background(), filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "a: [")
		_, err := NewLoader(&fakeDecryptor{}).Load(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
	})
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "values.yaml", "name: myapp\ningress:\n  host: a.example.com\n  className: nginx\n")
	prod := writeFile(t, dir, "prod.yaml", "ingress:\n  host: b.example.com\n")

	got, err := NewLoader(&fakeDecryptor{}).LoadAll(context.Background(), []string{base, prod})
	require.NoError(t, err)
	assert.Equal(t, values.Values{
		"name": "myapp",
		"ingress": map[string]any{
			"host":      "b.example.com",
			"className": "nginx",
		},
	}, got)

	empty, err := NewLoader(nil).LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, values.Values{}, empty)
}

func TestSOPS_Decrypt(t *testing.T) {
	t.Run("file without sops metadata", func(t *testing.T) {
		_, err := NewSOPS().Decrypt(context.Background(), "values.yaml", []byte("name: myapp\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sops decrypt values.yaml")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewSOPS().Decrypt(ctx, "values.yaml", []byte(encryptedDoc))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "json", formatOf("secrets.sops.JSON"))
	assert.Equal(t, "yaml", formatOf("secrets.sops.yaml"))
	assert.Equal(t, "yaml", formatOf("secrets"))
}
