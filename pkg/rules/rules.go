package rules

import (
	"slices"

	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"
)

// LegCoverage は lower_body の選択値が脚を覆うかどうかを判定するのだ。*catalog.Store が満たします。
type LegCoverage interface {
	LowerBodyCoversLegs(valueID, value *string) bool
}

// HandUsage は pose の選択値が手を使うかどうかを判定します。*catalog.Store が満たします。
type HandUsage interface {
	PoseUsesHands(valueID, value *string) bool
}

// Suppression は排他ルールで抑制されたスロットの集合です。
type Suppression struct {
	UpperBody bool
	LowerBody bool
	Legs      bool
}

// Any reports whether any slot is suppressed.
func (s Suppression) Any() bool {
	return s.UpperBody || s.LowerBody || s.Legs
}

// Suppressed はスロットが抑制されているかどうかを返すのだ。
func Suppressed(s Suppression, slot string) bool {
	switch slot {
	case registry.UpperBody:
		return s.UpperBody
	case registry.LowerBody:
		return s.LowerBody
	case registry.Legs:
		return s.Legs
	default:
		return false
	}
}

// Evaluate は設定に対して排他ルールを評価します。
func Evaluate(cfg *domain.GeneratorConfig, lookup LegCoverage) Suppression {
	if cfg == nil {
		return Suppression{}
	}
	return EvaluateSlots(cfg.Slots, cfg.FullBodyMode, lookup)
}

// EvaluateSlots は2つのルールを固定の順序で評価するのだ。
//
//  1. 全身モードで full_body が有効かつ値を持つなら upper_body と lower_body を抑制する。
//  2. lower_body の値が脚を覆うなら legs を抑制する。ただし 1 で lower_body が抑制された場合は適用しない。
//
// スロット状態は変更しません。
func EvaluateSlots(slots map[string]*domain.SlotState, fullBodyMode bool, lookup LegCoverage) Suppression {
	var s Suppression

	if fb := slots[registry.FullBody]; fullBodyMode && active(fb) {
		s.UpperBody = true
		s.LowerBody = true
	}

	if lb := slots[registry.LowerBody]; !s.LowerBody && active(lb) && lookup != nil {
		s.Legs = lookup.LowerBodyCoversLegs(lb.ValueID, lb.Value)
	}
	return s
}

// ApplyRandomize はランダム化の対象 batch のうち、抑制されたスロットの値を消すのだ。
// ロックされたスロットと batch 外のスロットは変更しません。
// 消去後に再評価し、変化がなくなるまで繰り返すので何度呼んでも結果は同じです。
// 値を消したスロット名を返します。
func ApplyRandomize(cfg *domain.GeneratorConfig, lookup LegCoverage, batch []string) []string {
	if cfg == nil {
		return nil
	}
	var cleared []string
	for {
		s := Evaluate(cfg, lookup)
		changed := false
		for _, slot := range []string{registry.UpperBody, registry.LowerBody, registry.Legs} {
			if !Suppressed(s, slot) || !slices.Contains(batch, slot) {
				continue
			}
			state := cfg.Slots[slot]
			if state == nil || state.Locked || !state.HasValue() {
				continue
			}
			state.ClearValue()
			cleared = append(cleared, slot)
			changed = true
		}
		if !changed {
			return cleared
		}
	}
}

// ApplyPoseHands は batch で選ばれた pose が手を使うとき、gesture を無効にするのだ。
// 一度きりの調整で、値は残すので後から有効に戻せます。
// pose が batch に無い場合と、gesture がロック中・無効の場合は何もしません。
// gesture を無効にしたら true を返します。
func ApplyPoseHands(cfg *domain.GeneratorConfig, lookup HandUsage, batch []string) bool {
	if cfg == nil || lookup == nil || !slices.Contains(batch, registry.Pose) {
		return false
	}
	pose := cfg.Slots[registry.Pose]
	if !active(pose) || !lookup.PoseUsesHands(pose.ValueID, pose.Value) {
		return false
	}
	gesture := cfg.Slots[registry.Gesture]
	if gesture == nil || gesture.Locked || !gesture.Enabled {
		return false
	}
	gesture.Enabled = false
	return true
}

func active(s *domain.SlotState) bool {
	return s != nil && s.Enabled && s.HasValue()
}
