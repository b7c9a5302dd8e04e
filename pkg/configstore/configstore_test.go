package configstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-character-kit/examples"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "configs"))
	require.NoError(t, err)
	return s
}

func sampleConfig(name string) *domain.GeneratorConfig {
	cfg := domain.NewGeneratorConfig(name)
	cfg.CreatedAt = domain.Timestamp{Time: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	cfg.ColorMode = domain.ColorModeRandom
	cfg.Slots[registry.UpperBody] = &domain.SlotState{Enabled: true, ValueID: domain.Ptr("shirt"), Value: domain.Ptr("shirt"), Color: domain.Ptr("blue"), ColorEnabled: true, Weight: 1.5}
	cfg.Slots["hair_style"].Locked = true
	return cfg
}

// memoryIO はバケット風の URI をキーにしたメモリ上の InputReader / OutputWriter なのだ。
type memoryIO struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryIO() *memoryIO { return &memoryIO{files: map[string][]byte{}} }

func (m *memoryIO) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[uri]
	if !ok {
		return nil, fmt.Errorf("オブジェクトが見つかりません (URI: %s): %w", uri, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryIO) List(_ context.Context, prefix string, callback func(string) error) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.Unlock()
	for _, k := range keys {
		if err := callback(k); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryIO) Write(_ context.Context, uri string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[uri] = data
	return nil
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New(t.TempDir(), WithReader(nil))
	assert.Error(t, err)

	s := newStore(t)
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	t.Run("リモートの保存先ではディレクトリを作らないのだ", func(t *testing.T) {
		t.Chdir(t.TempDir())
		mem := newMemoryIO()
		_, err := New("gs://bucket/configs", WithReader(mem), WithWriter(mem))
		require.NoError(t, err)
		_, err = os.Stat("gs:")
		assert.True(t, os.IsNotExist(err))
	})
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	cfg := sampleConfig("My Character")

	require.NoError(t, s.Save(ctx, cfg))
	assert.FileExists(t, filepath.Join(s.Dir(), "My Character.json"))

	loaded, err := s.Load(ctx, "My Character")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	t.Run("キャッシュからもコピーが返るのだ", func(t *testing.T) {
		first, err := s.Load(ctx, "My Character")
		require.NoError(t, err)
		first.Slots[registry.UpperBody].Weight = 2.0

		second, err := s.Load(ctx, "My Character")
		require.NoError(t, err)
		assert.Equal(t, 1.5, second.Slots[registry.UpperBody].Weight)
	})

	t.Run("上書き保存はキャッシュを無効にするのだ", func(t *testing.T) {
		updated := cfg.Clone()
		updated.FullBodyMode = true
		require.NoError(t, s.Save(ctx, updated))

		loaded, err := s.Load(ctx, "My Character")
		require.NoError(t, err)
		assert.True(t, loaded.FullBodyMode)
	})

	t.Run("作ったばかりの設定もそのまま戻るのだ", func(t *testing.T) {
		fresh := domain.NewGeneratorConfig("fresh")
		require.NoError(t, s.Save(ctx, fresh))
		loaded, err := s.Load(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, fresh, loaded)
	})
}

func TestStore_Open(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, examples.SampleConfigJSON, 0o644))

	cfg, err := s.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "sample", cfg.Name)

	_, err = s.Open(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{ invalid`), 0o644))
	_, err = s.Open(ctx, broken)
	assert.ErrorIs(t, err, domain.ErrMalformedConfig)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	t.Run("不正な名前", func(t *testing.T) {
		for _, name := range []string{"", "  ", ".", "..", "a/b", `a\b`, "../escape"} {
			_, err := s.Load(ctx, name)
			assert.ErrorIs(t, err, ErrInvalidName, name)
			assert.ErrorIs(t, s.Delete(ctx, name), ErrInvalidName, name)
		}
		bad := domain.NewGeneratorConfig("x")
		bad.Name = "nested/name"
		assert.ErrorIs(t, s.Save(ctx, bad), ErrInvalidName)
		assert.Error(t, s.Save(ctx, nil))
	})

	t.Run("存在しない設定は ErrNotFound なのだ", func(t *testing.T) {
		_, err := s.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	})

	t.Run("壊れたファイルは ErrMalformedConfig なのだ", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.json"), []byte(`{ invalid json }`), 0o644))
		_, err := s.Load(ctx, "broken")
		assert.ErrorIs(t, err, domain.ErrMalformedConfig)
	})
}

func TestStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"zeta", "alpha", "Mid"} {
		require.NoError(t, s.Save(ctx, sampleConfig(name)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("memo"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".hidden.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub.json"), 0o755))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid", "alpha", "zeta"}, names)

	_, err = s.Load(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "alpha"))

	_, err = s.Load(ctx, "alpha")
	assert.ErrorIs(t, err, ErrNotFound, "削除後はキャッシュからも消えるのだ")

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid", "zeta"}, names)

	t.Run("相対パスの保存先でも一覧できるのだ", func(t *testing.T) {
		t.Chdir(t.TempDir())
		rel, err := New("./configs/")
		require.NoError(t, err)
		require.NoError(t, rel.Save(ctx, sampleConfig("local")))

		names, err := rel.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"local"}, names)
	})

	t.Run("保存先のディレクトリが消えていれば空なのだ", func(t *testing.T) {
		gone := newStore(t)
		require.NoError(t, os.RemoveAll(gone.Dir()))
		names, err := gone.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestStore_Remote(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryIO()
	s, err := New("gs://bucket/configs", WithReader(mem), WithWriter(mem))
	require.NoError(t, err)

	p, err := s.Path("remote")
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/configs/remote.json", p)

	cfg := sampleConfig("remote")
	require.NoError(t, s.Save(ctx, cfg))
	assert.Contains(t, mem.files, "gs://bucket/configs/remote.json")

	loaded, err := s.Load(ctx, "remote")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	mem.files["gs://bucket/configs/nested/deep.json"] = []byte("{}")
	mem.files["gs://bucket/configs/readme.md"] = []byte("memo")
	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"remote"}, names, "直下の .json だけが対象なのだ")

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "remote"), ErrRemoteDelete)
}
