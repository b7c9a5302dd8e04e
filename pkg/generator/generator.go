package generator

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/shouni/go-character-kit/pkg/rules"
)

// Generator はスロットのランダム化を担当するのだ。
// 状態を持たないので共有できますが、同じ GeneratorConfig を同時に渡してはいけません。
type Generator struct {
	catalog Catalog
	sampler Sampler
}

// New は Catalog と Sampler から Generator を作成します。
func New(catalog Catalog, sampler Sampler) (*Generator, error) {
	if catalog == nil {
		return nil, errors.New("catalog は必須です")
	}
	if sampler == nil {
		return nil, errors.New("sampler は必須です")
	}
	return &Generator{catalog: catalog, sampler: sampler}, nil
}

// RandomizeAll はロックされていない全スロットをランダム化するのだ。
func (g *Generator) RandomizeAll(cfg *domain.GeneratorConfig) Results {
	return g.RandomizeSlots(cfg, registry.Names()...)
}

// RandomizeCategory はカテゴリに属するスロットをランダム化します。未知のカテゴリは何もしないのだ。
func (g *Generator) RandomizeCategory(cfg *domain.GeneratorConfig, category string) Results {
	return g.RandomizeSlots(cfg, registry.ByCategory(category)...)
}

// RandomizeSlots は指定されたスロットをランダム化し、排他ルールを適用した最終状態を返すのだ。
//
// ロックされたスロットと未登録のスロット名は無視します。
// 選択肢が空のスロットは未選択になります。
// 色は ColorMode に従い、値を持つ has_color のスロットにだけ付けるのだ。
// 選ばれた pose が手を使う場合、ロックされていない gesture は無効になります。
func (g *Generator) RandomizeSlots(cfg *domain.GeneratorConfig, names ...string) Results {
	results := make(Results)
	if cfg == nil {
		return results
	}
	cfg.EnsureSlots()

	batch := g.batch(cfg, names)
	for _, name := range batch {
		state := cfg.Slot(name)
		if item, ok := g.sampler.Sample(name); ok {
			state.SetValue(&item)
		} else {
			state.ClearValue()
		}
		g.applyColor(cfg, name, state)
	}

	if cleared := rules.ApplyRandomize(cfg, g.catalog, batch); len(cleared) > 0 {
		slog.Debug("排他ルールでスロットを消去したのだ", "slots", cleared)
	}
	if rules.ApplyPoseHands(cfg, g.catalog, batch) {
		slog.Debug("手を使うポーズなので gesture を無効にしたのだ", "pose", cfg.Slots[registry.Pose].ValueID)
	}

	for _, name := range batch {
		results[name] = assignmentOf(cfg.Slots[name])
	}
	return results
}

// batch は対象スロットを定義順に並べ、未登録・重複・ロック中のものを除くのだ。
func (g *Generator) batch(cfg *domain.GeneratorConfig, names []string) []string {
	var batch []string
	for _, name := range registry.Names() {
		if !slices.Contains(names, name) {
			continue
		}
		if state := cfg.Slots[name]; state != nil && state.Locked {
			continue
		}
		batch = append(batch, name)
	}
	return batch
}

func (g *Generator) applyColor(cfg *domain.GeneratorConfig, name string, state *domain.SlotState) {
	def, _ := registry.Lookup(name)
	if !def.HasColor || !state.HasValue() {
		return
	}
	switch cfg.ColorMode {
	case domain.ColorModePalette:
		if c, ok := g.sampler.SampleColorFromPalette(cfg.PaletteID()); ok {
			state.SetColor(c)
		}
	case domain.ColorModeRandom:
		state.SetColor(g.sampler.SampleRandomColor())
	}
}

// ApplyPalette はパレットの色を、値を持つ有効な has_color のスロットに割り当てるのだ。
// パレットが存在しなければ何も変更せず空のマップを返します。ロックされたスロットは変更しません。
// 成功すると設定のアクティブパレットも paletteID に切り替えるのだ。
func (g *Generator) ApplyPalette(cfg *domain.GeneratorConfig, paletteID string) map[string]string {
	colors := make(map[string]string)
	if cfg == nil {
		return colors
	}
	for _, def := range registry.Definitions() {
		if !def.HasColor {
			continue
		}
		state := cfg.Slots[def.Name]
		if state == nil || state.Locked || !state.Enabled || !state.HasValue() {
			continue
		}
		c, ok := g.sampler.SampleColorFromPalette(paletteID)
		if !ok {
			slog.Warn("パレットが見つからないので色を変更しないのだ", "palette", paletteID)
			return colors
		}
		state.SetColor(c)
		colors[def.Name] = c
	}
	if len(colors) > 0 {
		cfg.ActivePaletteID = domain.Ptr(paletteID)
	}
	return colors
}
