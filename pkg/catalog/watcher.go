package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	// DefaultDebounce は連続したファイルイベントをまとめる待ち時間なのだ。
	DefaultDebounce = 200 * time.Millisecond
	// DefaultReloadInterval は再読み込みの最小間隔です。
	DefaultReloadInterval = time.Second
)

// WatcherOption は Watcher の設定を変更します。
type WatcherOption func(*Watcher)

// WithDebounce はイベントをまとめる待ち時間を設定するのだ。
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadLimit は再読み込みの頻度制限を設定します。
func WithReloadLimit(limit rate.Limit, burst int) WatcherOption {
	return func(w *Watcher) { w.limiter = rate.NewLimiter(limit, burst) }
}

// Watcher はデータディレクトリを監視し、変更があるたびに新しい Store を作って onReload に渡すのだ。
// 既存の Store を書き換えることはありません。
type Watcher struct {
	root     string
	sources  []Source
	onReload func(*Store)
	debounce time.Duration
	limiter  *rate.Limiter
	fw       *fsnotify.Watcher
	dirs     map[string]struct{}
}

// NewWatcher は監視対象のディレクトリを登録した Watcher を作成します。
// 監視の開始は Run で行うのだ。
func NewWatcher(root string, sources []Source, onReload func(*Store), opts ...WatcherOption) (*Watcher, error) {
	if onReload == nil {
		return nil, errors.New("onReload は必須です")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("データディレクトリを確認できません: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("データディレクトリではありません: %s", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ファイル監視の初期化に失敗しました: %w", err)
	}

	w := &Watcher{
		root:     root,
		sources:  sources,
		onReload: onReload,
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(DefaultReloadInterval), 1),
		fw:       fw,
		dirs:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.addDir(root)
	for _, src := range sources {
		w.addDir(w.sourceDir(src))
	}
	return w, nil
}

func (w *Watcher) sourceDir(src Source) string {
	return filepath.Join(w.root, filepath.FromSlash(path.Dir(src.Path)))
}

func (w *Watcher) addDir(dir string) {
	if _, ok := w.dirs[dir]; ok {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if err := w.fw.Add(dir); err != nil {
		slog.Warn("ディレクトリを監視対象にできなかったのだ", "dir", dir, "error", err)
		return
	}
	w.dirs[dir] = struct{}{}
}

// Run は ctx がキャンセルされるまでイベントを処理するのだ。終了時に監視を閉じます。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// 後から作られたカタログディレクトリも監視するのだ
				for _, src := range w.sources {
					if filepath.Clean(ev.Name) == w.sourceDir(src) {
						w.addDir(ev.Name)
					}
				}
			}
			if w.relevant(ev) {
				pending = time.After(w.debounce)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("ファイル監視でエラーが発生したのだ", "error", err)

		case <-pending:
			pending = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			w.reload()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (w *Watcher) reload() {
	store, err := Load(os.DirFS(w.root), w.sources)
	if err != nil {
		slog.Error("カタログの再読み込みに失敗したのだ", "root", w.root, "error", err)
		return
	}
	slog.Info("カタログを再読み込みしたのだ", "root", w.root, "catalogs", len(store.CatalogNames()), "missing", len(store.Missing()))
	w.onReload(store)
}
