package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"

	"github.com/shouni/go-character-kit/examples"
	"github.com/shouni/go-character-kit/pkg/catalog"
	"github.com/shouni/go-character-kit/pkg/configstore"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/generator"
	"github.com/shouni/go-character-kit/pkg/prompt"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/shouni/go-character-kit/pkg/sampler"
)

// ErrNoDataDir は監視対象のデータディレクトリが設定されていない場合のエラーです。
var ErrNoDataDir = errors.New("workflow: data directory is not configured")

// Option は Manager の構築方法を変更します。
type Option func(*Manager)

// WithFS はカタログを読み込むファイルシステムを差し替えるのだ。DataDir より優先されます。
func WithFS(fsys fs.FS) Option {
	return func(m *Manager) { m.fsys = fsys }
}

// WithSources はカタログファイルの配置を差し替えます。
func WithSources(sources []catalog.Source) Option {
	return func(m *Manager) { m.sources = sources }
}

// WithWatcherOptions はカタログ監視の設定を渡すのだ。
func WithWatcherOptions(opts ...catalog.WatcherOption) Option {
	return func(m *Manager) { m.watcherOpts = append(m.watcherOpts, opts...) }
}

// engine は1つの Store に束縛されたコンポーネント群なのだ。再読み込みのたびに丸ごと作り直します。
type engine struct {
	store     *catalog.Store
	renderer  *prompt.Renderer
	generator *generator.Generator
}

// Manager はカタログ、生成、描画、設定の保存をまとめて管理します。
// カタログの差し替えはアトミックに行うので、監視中も他のゴルーチンから安全に使えるのだ。
type Manager struct {
	cfg         Config
	fsys        fs.FS
	sources     []catalog.Source
	watcherOpts []catalog.WatcherOption

	engine  atomic.Pointer[engine]
	configs *configstore.Store

	// 固定シードの *rand.Rand はゴルーチン安全ではないので直列化するのだ
	randMu sync.Mutex
	rng    *rand.Rand
}

var _ Workflow = (*Manager)(nil)

// New は設定に従ってカタログを読み込み、新しい Manager を初期化します。
func New(ctx context.Context, cfg Config, opts ...Option) (*Manager, error) {
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir
	}
	m := &Manager{
		cfg:     cfg,
		sources: catalog.DefaultSources(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.fsys == nil {
		if cfg.DataDir != "" {
			m.fsys = os.DirFS(cfg.DataDir)
		} else {
			slog.InfoContext(ctx, "データディレクトリが未指定なので埋め込みのデモカタログを使うのだ")
			m.fsys = examples.FS()
		}
	}
	if cfg.Seed != 0 {
		m.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	store, err := catalog.Load(m.fsys, m.sources)
	if err != nil {
		return nil, fmt.Errorf("カタログの読み込みに失敗しました: %w", err)
	}
	if err := m.swap(store); err != nil {
		return nil, err
	}

	configs, err := configstore.New(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("設定ストアの初期化に失敗しました: %w", err)
	}
	m.configs = configs

	slog.InfoContext(ctx, "Manager を初期化したのだ",
		"data_dir", cfg.DataDir,
		"config_dir", cfg.ConfigDir,
		"catalogs", len(store.CatalogNames()),
		"missing", len(store.Missing()),
	)
	return m, nil
}

// swap は Store に束縛したコンポーネントを組み立てて差し替えます。
func (m *Manager) swap(store *catalog.Store) error {
	var opts []sampler.Option
	if m.rng != nil {
		opts = append(opts, sampler.WithRand(m.rng))
	}
	gen, err := generator.New(store, sampler.New(store, opts...))
	if err != nil {
		return fmt.Errorf("ジェネレーターの初期化に失敗しました: %w", err)
	}
	m.engine.Store(&engine{
		store:     store,
		renderer:  prompt.NewRenderer(store),
		generator: gen,
	})
	return nil
}

// Store は現在のカタログを返します。
func (m *Manager) Store() *catalog.Store {
	return m.engine.Load().store
}

// Configs は設定ストアを返すのだ。
func (m *Manager) Configs() *configstore.Store {
	return m.configs
}

// NewConfig は全スロットが既定状態の設定を作ります。
func (m *Manager) NewConfig(name string) *domain.GeneratorConfig {
	return domain.NewGeneratorConfig(name)
}

// Randomize はリクエストに従って設定をランダム化するのだ。
func (m *Manager) Randomize(cfg *domain.GeneratorConfig, req RandomizeRequest) generator.Results {
	e := m.engine.Load()

	m.randMu.Lock()
	defer m.randMu.Unlock()

	switch {
	case req.Category != "":
		if !registry.IsCategory(req.Category) {
			slog.Warn("未知のカテゴリなのでランダム化しないのだ", "category", req.Category)
		}
		return e.generator.RandomizeCategory(cfg, req.Category)
	case len(req.Slots) > 0:
		return e.generator.RandomizeSlots(cfg, req.Slots...)
	default:
		return e.generator.RandomizeAll(cfg)
	}
}

// ApplyPalette はパレットの色を衣装スロットに割り当てます。
func (m *Manager) ApplyPalette(cfg *domain.GeneratorConfig, paletteID string) map[string]string {
	e := m.engine.Load()

	m.randMu.Lock()
	defer m.randMu.Unlock()
	return e.generator.ApplyPalette(cfg, paletteID)
}

// Render は設定をプロンプトに変換するのだ。lang が空なら設定の出力言語を使います。
func (m *Manager) Render(cfg *domain.GeneratorConfig, lang string) string {
	return m.engine.Load().renderer.Render(cfg, m.language(lang))
}

// Tokens は先頭トークンを除いたトークン列を出力順で返します。
func (m *Manager) Tokens(cfg *domain.GeneratorConfig, lang string) []string {
	if cfg == nil {
		return []string{}
	}
	return m.engine.Load().renderer.Tokens(cfg.Slots, cfg.FullBodyMode, m.language(lang))
}

func (m *Manager) language(lang string) string {
	if lang == "" {
		return m.cfg.OutputLanguage
	}
	return lang
}

// Watch は DataDir を監視し、変更のたびにカタログを差し替えるのだ。ctx がキャンセルされるまで戻りません。
// onReload が nil でなければ差し替え後に呼び出します。
func (m *Manager) Watch(ctx context.Context, onReload func(*catalog.Store)) error {
	if m.cfg.DataDir == "" {
		return ErrNoDataDir
	}
	w, err := catalog.NewWatcher(m.cfg.DataDir, m.sources, func(store *catalog.Store) {
		if err := m.swap(store); err != nil {
			slog.ErrorContext(ctx, "カタログの差し替えに失敗したのだ", "error", err)
			return
		}
		if onReload != nil {
			onReload(store)
		}
	}, m.watcherOpts...)
	if err != nil {
		return fmt.Errorf("カタログ監視の開始に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "カタログの監視を開始したのだ", "data_dir", m.cfg.DataDir)
	return w.Run(ctx)
}
