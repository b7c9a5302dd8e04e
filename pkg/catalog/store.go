package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads はカタログ読み込みの同時実行数なのだ。
const maxConcurrentReads = 4

var (
	// ErrNilFS は Load に nil のファイルシステムが渡された場合のエラーです。
	ErrNilFS = errors.New("catalog: nil filesystem")

	// ErrMissingCatalog は MissingCatalogError と errors.Is で照合するための番兵です。
	ErrMissingCatalog = errors.New("catalog: missing catalog")
)

// MissingCatalogError はカタログファイルが見つからない・読めない・解析できないことを表すのだ。
// ロードを中断せず記録だけされ、該当スロットは空の選択肢になります。
type MissingCatalogError struct {
	Name string
	Path string
	Err  error
}

func (e *MissingCatalogError) Error() string {
	return fmt.Sprintf("カタログ '%s' (%s) を利用できません: %v", e.Name, e.Path, e.Err)
}

func (e *MissingCatalogError) Unwrap() error { return e.Err }

// Is は ErrMissingCatalog との照合を可能にします。
func (e *MissingCatalogError) Is(target error) bool { return target == ErrMissingCatalog }

// Store は全カタログとカラーパレットを保持します。
// ロード後は読み取り専用なので、複数のリクエストから同時に参照しても安全なのだ。
type Store struct {
	catalogs map[string]*Catalog
	colors   *domain.ColorStore
	palettes map[string]domain.ColorPalette
	missing  []*MissingCatalogError
	loadedAt time.Time
}

// New はメモリ上のカタログから Store を組み立てるのだ。colors は nil でも構いません。
func New(catalogs []*Catalog, colors *domain.ColorStore) *Store {
	s := &Store{
		catalogs: make(map[string]*Catalog, len(catalogs)),
		palettes: make(map[string]domain.ColorPalette),
		loadedAt: time.Now(),
	}
	for _, c := range catalogs {
		if c != nil {
			s.catalogs[c.Name()] = c
		}
	}
	s.setColors(colors)
	return s
}

func (s *Store) setColors(colors *domain.ColorStore) {
	s.colors = colors
	if colors == nil {
		return
	}
	for _, p := range colors.Palettes {
		if p.ID == "" {
			continue
		}
		if _, dup := s.palettes[p.ID]; !dup {
			s.palettes[p.ID] = p
		}
	}
}

// LoadDir はディレクトリ配下の標準カタログを読み込みます。
func LoadDir(dir string) (*Store, error) {
	return Load(os.DirFS(dir), DefaultSources())
}

// Load は各ソースを一度だけ並列に読み込み、インデックスを構築するのだ。
// 見つからない・壊れているカタログはエラーにせず Missing に記録して読み飛ばします。
func Load(fsys fs.FS, sources []Source) (*Store, error) {
	if fsys == nil {
		return nil, ErrNilFS
	}

	type result struct {
		catalog *Catalog
		colors  *domain.ColorStore
		missing *MissingCatalogError
	}
	results := make([]result, len(sources))

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentReads)
	for i, src := range sources {
		eg.Go(func() error {
			data, usedPath, err := readSource(fsys, src)
			if err != nil {
				results[i].missing = &MissingCatalogError{Name: src.Name, Path: usedPath, Err: err}
				return nil
			}

			if src.Name == registry.CatalogColors {
				colors, err := DecodeColors(formatOf(usedPath), data)
				if err != nil {
					results[i].missing = &MissingCatalogError{Name: src.Name, Path: usedPath, Err: err}
					return nil
				}
				results[i].colors = colors
				return nil
			}

			c, err := DecodeCatalog(src.Name, formatOf(usedPath), data)
			if err != nil {
				results[i].missing = &MissingCatalogError{Name: src.Name, Path: usedPath, Err: err}
				return nil
			}
			results[i].catalog = c
			return nil
		})
	}
	// 各ゴルーチンはエラーを記録するだけで返さないのだ
	_ = eg.Wait()

	var catalogs []*Catalog
	var colors *domain.ColorStore
	var missing []*MissingCatalogError
	for _, r := range results {
		switch {
		case r.missing != nil:
			slog.Warn("カタログを読み込めなかったので空として扱うのだ", "catalog", r.missing.Name, "path", r.missing.Path, "error", r.missing.Err)
			missing = append(missing, r.missing)
		case r.colors != nil:
			colors = r.colors
		case r.catalog != nil:
			catalogs = append(catalogs, r.catalog)
		}
	}

	s := New(catalogs, colors)
	s.missing = missing
	slog.Debug("カタログを読み込んだのだ", "loaded", len(catalogs), "missing", len(missing), "palettes", len(s.palettes))
	return s, nil
}

// Missing は読み込めなかったカタログの一覧を返します。
func (s *Store) Missing() []*MissingCatalogError {
	return slices.Clone(s.missing)
}

// LoadedAt はストアを構築した時刻なのだ。
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// Catalog は名前からカタログを返します。
func (s *Store) Catalog(name string) (*Catalog, bool) {
	c, ok := s.catalogs[name]
	return c, ok
}

// Item はカタログ名と ID からアイテムを返します。
func (s *Store) Item(catalog, id string) (domain.CatalogItem, bool) {
	c, ok := s.catalogs[catalog]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.Item(id)
}

// CatalogNames は読み込み済みのカタログ名をソートして返すのだ。
func (s *Store) CatalogNames() []string {
	return slices.Sorted(maps.Keys(s.catalogs))
}

// Options はスロットに表示される選択肢を順序付きで返します。
// 未知のスロットや未ロードのカタログはエラーではなく空のスライスなのだ。
func (s *Store) Options(slot string) domain.CatalogItems {
	def, ok := registry.Lookup(slot)
	if !ok {
		return domain.CatalogItems{}
	}
	c, ok := s.catalogs[def.Catalog]
	if !ok {
		return domain.CatalogItems{}
	}
	if def.IndexKey == "" {
		return c.Items()
	}
	return c.Lookup(c.PrimaryIndex(), def.IndexKey)
}

// ResolveItem はスロットの選択値からアイテムを特定するのだ。
// ID を優先し、見つからなければ表示名でスロットの選択肢、次にカタログ全体を探します。
func (s *Store) ResolveItem(slot string, valueID, value *string) (domain.CatalogItem, bool) {
	def, ok := registry.Lookup(slot)
	if !ok {
		return domain.CatalogItem{}, false
	}
	c, ok := s.catalogs[def.Catalog]
	if !ok {
		return domain.CatalogItem{}, false
	}
	if valueID != nil && *valueID != "" {
		if item, ok := c.Item(*valueID); ok {
			return item, true
		}
	}
	if value == nil || *value == "" {
		return domain.CatalogItem{}, false
	}
	if item, ok := s.Options(slot).FindByName(*value); ok {
		return item, true
	}
	return c.items.FindByName(*value)
}

// DisplayName はスロットの値の表示名を lang で返します。
// ID が解決できなければキャッシュされた表示名を使い、それも無ければ ok=false なのだ。
func (s *Store) DisplayName(slot string, valueID, value *string, lang string) (string, bool) {
	if item, ok := s.ResolveItem(slot, valueID, value); ok {
		return item.DisplayName(lang), true
	}
	if value != nil && *value != "" {
		return *value, true
	}
	return "", false
}

// LowerBodyCoversLegs は lower_body の選択値が脚を覆うアイテムかどうかを返すのだ。
func (s *Store) LowerBodyCoversLegs(valueID, value *string) bool {
	item, ok := s.ResolveItem(registry.LowerBody, valueID, value)
	return ok && item.CoversLegs
}

// PoseUsesHands は pose の選択値が手を使うポーズかどうかを返します。
func (s *Store) PoseUsesHands(valueID, value *string) bool {
	item, ok := s.ResolveItem(registry.Pose, valueID, value)
	return ok && item.UsesHands
}

// CoversLegsByID は lower_body の選択肢ごとの脚カバー有無を返すのだ。
func (s *Store) CoversLegsByID() map[string]bool {
	return flagsByID(s.Options(registry.LowerBody), func(i domain.CatalogItem) bool { return i.CoversLegs })
}

// UsesHandsByID は pose の選択肢ごとの手の使用有無を返します。
func (s *Store) UsesHandsByID() map[string]bool {
	return flagsByID(s.Options(registry.Pose), func(i domain.CatalogItem) bool { return i.UsesHands })
}

func flagsByID(items domain.CatalogItems, flag func(domain.CatalogItem) bool) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item.ID] = flag(item)
	}
	return m
}

// Palettes はファイル順のパレット一覧を返すのだ。
func (s *Store) Palettes() []domain.ColorPalette {
	if s.colors == nil {
		return nil
	}
	out := make([]domain.ColorPalette, 0, len(s.colors.Palettes))
	for _, p := range s.colors.Palettes {
		p.Colors = slices.Clone(p.Colors)
		out = append(out, p)
	}
	return out
}

// Palette は ID からパレットを返します。
func (s *Store) Palette(id string) (domain.ColorPalette, bool) {
	p, ok := s.palettes[id]
	if ok {
		p.Colors = slices.Clone(p.Colors)
	}
	return p, ok
}

// IndividualColors はパレット未選択時に使う色の一覧なのだ。
func (s *Store) IndividualColors() []string {
	if s.colors == nil {
		return nil
	}
	return slices.Clone(s.colors.IndividualColors)
}

// LocalizeColor は色トークンを lang の表示ラベルに変換します。
func (s *Store) LocalizeColor(color, lang string) string {
	return s.colors.LocalizeColor(color, lang)
}
