package prompt

import (
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/shouni/go-character-kit/pkg/rules"
)

// Resolver はスロットの値を表示名に解決するのだ。*catalog.Store が満たします。
type Resolver interface {
	rules.LegCoverage
	DisplayName(slot string, valueID, value *string, lang string) (string, bool)
	LocalizeColor(color, lang string) string
}

// Renderer はスロット状態からプロンプト文字列を組み立てます。
// 状態を持たないので、複数のゴルーチンから同時に使っても安全なのだ。
type Renderer struct {
	resolver Resolver
}

// NewRenderer は Resolver を使う Renderer を作成します。
func NewRenderer(resolver Resolver) *Renderer {
	return &Renderer{resolver: resolver}
}

// Render は設定をプロンプトに変換するのだ。設定は変更しません。
func (r *Renderer) Render(cfg *domain.GeneratorConfig, lang string) string {
	if cfg == nil {
		return LeadingToken
	}
	return r.RenderSlots(cfg.Slots, cfg.FullBodyMode, lang)
}

// RenderSlots はスロット状態の集合と全身モードからプロンプトを組み立てます。
func (r *Renderer) RenderSlots(slots map[string]*domain.SlotState, fullBodyMode bool, lang string) string {
	return Join(r.Tokens(slots, fullBodyMode, lang))
}

// Tokens は先頭トークンを除いたトークン列を出力順で返すのだ。
//
// 無効・未選択・排他ルールで抑制されたスロットは飛ばします。
// 抑制されたスロットの値はそのまま残り、消去はランダム化のときだけ行います。
// 未登録のスロットは出力順に含まれないので無視されるのだ。
func (r *Renderer) Tokens(slots map[string]*domain.SlotState, fullBodyMode bool, lang string) []string {
	suppression := rules.EvaluateSlots(slots, fullBodyMode, r.resolver)

	tokens := make([]string, 0, len(slots))
	for _, slot := range registry.RenderOrder() {
		state := slots[slot]
		if state == nil || !state.Enabled || !state.HasValue() {
			continue
		}
		if rules.Suppressed(suppression, slot) {
			continue
		}

		name, ok := r.resolver.DisplayName(slot, state.ValueID, state.Value, lang)
		if !ok || name == "" {
			continue
		}

		var color string
		if def, _ := registry.Lookup(slot); def.HasColor {
			if c, ok := state.ActiveColor(); ok {
				color = r.resolver.LocalizeColor(c, lang)
			}
		}
		tokens = append(tokens, FormatToken(name, color, state.Weight))
	}
	return tokens
}
