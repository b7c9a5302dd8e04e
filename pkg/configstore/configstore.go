package configstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shouni/go-character-kit/pkg/domain"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-utils/urlpath"
)

const (
	// FileExt は設定ファイルの拡張子なのだ。
	FileExt = ".json"
	// ContentType は保存時に指定する Content-Type です。
	ContentType = "application/json; charset=utf-8"

	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 10 * time.Minute
)

var (
	// ErrInvalidName は設定名が空、またはパス区切りを含む場合のエラーです。
	ErrInvalidName = errors.New("configstore: invalid config name")
	// ErrNotFound は設定ファイルが存在しない場合のエラーなのだ。
	ErrNotFound = errors.New("configstore: config not found")
	// ErrRemoteDelete はリモートの保存先で Delete が呼ばれた場合のエラーです。
	ErrRemoteDelete = errors.New("configstore: delete is not supported for remote storage")
)

// Store は保存先（ローカルディレクトリ、gs:// または s3://）配下に設定を <name>.json として保存します。
// 読み込んだ設定はキャッシュしますが、呼び出し側には常にコピーを返すのだ。
type Store struct {
	dir    string
	reader remoteio.InputReader
	writer remoteio.OutputWriter
	cache  *cache.Cache
}

// Option は Store の入出力先を差し替えるのだ。
type Option func(*Store)

// WithReader は読み込みに使う InputReader を指定します。
func WithReader(r remoteio.InputReader) Option {
	return func(s *Store) { s.reader = r }
}

// WithWriter は書き込みに使う OutputWriter を指定します。
func WithWriter(w remoteio.OutputWriter) Option {
	return func(s *Store) { s.writer = w }
}

// New は dir を保存先とする Store を作成します。
// 既定ではクラウドのクライアントを持たない remoteio のリーダー・ライターを使うので、ローカルパスだけを扱えるのだ。
// ローカルのディレクトリが無ければ作ります。
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("dir は必須です")
	}
	s := &Store{
		dir:    dir,
		reader: remoteio.NewUniversalInputReader(nil, nil),
		writer: remoteio.NewUniversalIOWriter(nil, nil),
		cache:  cache.New(defaultCacheExpiration, cacheCleanupInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reader == nil || s.writer == nil {
		return nil, errors.New("reader と writer は必須です")
	}

	if !urlpath.IsRemoteURI(dir) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
		}
	}
	return s, nil
}

// Dir は保存先を返します。
func (s *Store) Dir() string { return s.dir }

// Path は設定名に対応するファイルパス（または URI）を返すのだ。
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return urlpath.ResolvePath(s.dir, name+FileExt)
}

// ValidateName は設定名がファイル名として安全かどうかを確認します。
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: '%s' にパス区切りが含まれています", ErrInvalidName, name)
	}
	return nil
}

// Save は設定を保存するのだ。同名のファイルは上書きします。
func (s *Store) Save(ctx context.Context, cfg *domain.GeneratorConfig) error {
	if cfg == nil {
		return errors.New("cfg は必須です")
	}
	p, err := s.Path(cfg.Name)
	if err != nil {
		return err
	}
	data, err := domain.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("設定 '%s' のエンコードに失敗しました: %w", cfg.Name, err)
	}

	s.cache.Delete(cfg.Name)
	if err := s.writer.Write(ctx, p, bytes.NewReader(data), ContentType); err != nil {
		return fmt.Errorf("設定 '%s' の保存に失敗しました: %w", cfg.Name, err)
	}
	slog.DebugContext(ctx, "設定を保存したのだ", "name", cfg.Name, "path", p)
	return nil
}

// Load は設定を読み込みます。
// ファイルが無ければ ErrNotFound、壊れていれば domain.ErrMalformedConfig を返すのだ。
func (s *Store) Load(ctx context.Context, name string) (*domain.GeneratorConfig, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(name); ok {
		return cached.(*domain.GeneratorConfig).Clone(), nil
	}

	rc, err := s.reader.Open(ctx, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
		}
		return nil, fmt.Errorf("設定 '%s' の読み込みに失敗しました: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("設定 '%s' の読み込みに失敗しました: %w", name, err)
	}
	cfg, err := domain.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("設定 '%s': %w", name, err)
	}

	s.cache.Set(name, cfg.Clone(), cache.DefaultExpiration)
	return cfg, nil
}

// Open は保存先に関係なく、任意のパスまたは URI の設定ファイルを読み込むのだ。
// キャッシュは使いません。
func (s *Store) Open(ctx context.Context, uri string) (*domain.GeneratorConfig, error) {
	rc, err := s.reader.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました: %w", uri, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました: %w", uri, err)
	}
	cfg, err := domain.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return cfg, nil
}

// List は保存済みの設定名をソートして返します。ローカルのディレクトリが無ければ空なのだ。
// 保存先の直下にあるファイルだけを対象にします。
func (s *Store) List(ctx context.Context) ([]string, error) {
	root := s.dir
	if !urlpath.IsRemoteURI(root) {
		root = filepath.Clean(root)
	}
	prefix := strings.TrimSuffix(filepath.ToSlash(root), "/") + "/"
	var names []string
	err := s.reader.List(ctx, s.dir, func(filePath string) error {
		rel := strings.TrimPrefix(filepath.ToSlash(filePath), prefix)
		base := path.Base(rel)
		if rel != base || path.Ext(base) != FileExt || strings.HasPrefix(base, ".") {
			return nil
		}
		names = append(names, strings.TrimSuffix(base, FileExt))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("設定の一覧取得に失敗しました: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	slices.Sort(names)
	return names, nil
}

// Delete は設定ファイルを削除するのだ。
// remoteio は削除を提供しないので、ローカルの保存先だけが対象です。
func (s *Store) Delete(ctx context.Context, name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if urlpath.IsRemoteURI(p) {
		return fmt.Errorf("%w: %s", ErrRemoteDelete, p)
	}
	s.cache.Delete(name)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: '%s'", ErrNotFound, name)
		}
		return fmt.Errorf("設定 '%s' の削除に失敗しました: %w", name, err)
	}
	slog.InfoContext(ctx, "設定を削除したのだ", "name", name)
	return nil
}
