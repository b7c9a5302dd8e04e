package domain

import (
	"encoding/json"
	"math"
)

// 重みの既定値と出力時の範囲です。
const (
	DefaultWeight = 1.0
	MinWeight     = 0.1
	MaxWeight     = 2.0
)

// SlotState は呼び出し側が操作するスロット1つ分の可変状態なのだ。
// 任意項目は nil で「未選択」を表し、"(None)" のような番兵文字列は使いません。
type SlotState struct {
	Enabled      bool    `json:"enabled"`
	Locked       bool    `json:"locked"`   // true なら一括ランダム化の対象外
	ValueID      *string `json:"value_id"` // 正規の選択値
	Value        *string `json:"value"`    // 表示名のキャッシュ（旧形式の名前検索用）
	Color        *string `json:"color"`
	ColorEnabled bool    `json:"color_enabled"`
	Weight       float64 `json:"weight"`
}

// DefaultSlotState は有効・未選択・重み 1.0 のスロット状態を返します。
func DefaultSlotState() *SlotState {
	return &SlotState{Enabled: true, Weight: DefaultWeight}
}

// HasValue は ID か表示名のどちらかが選択されていれば true を返すのだ。
func (s *SlotState) HasValue() bool {
	if s == nil {
		return false
	}
	return deref(s.ValueID) != "" || deref(s.Value) != ""
}

// ActiveColor は出力に使う色を返します。色が空か ColorEnabled が false なら ok=false です。
func (s *SlotState) ActiveColor() (string, bool) {
	if s == nil || !s.ColorEnabled {
		return "", false
	}
	c := deref(s.Color)
	return c, c != ""
}

// SetValue は選択値を設定するのだ。item が nil なら選択を解除します。
func (s *SlotState) SetValue(item *CatalogItem) {
	if item == nil {
		s.ClearValue()
		return
	}
	s.ValueID = Ptr(item.ID)
	s.Value = Ptr(item.Name)
}

// ClearValue は選択値だけを消します。色や重み、有効フラグは保持するのだ。
func (s *SlotState) ClearValue() {
	s.ValueID = nil
	s.Value = nil
}

// SetColor は色を設定して出力対象にします。
func (s *SlotState) SetColor(color string) {
	s.Color = Ptr(color)
	s.ColorEnabled = true
}

// Clone はスロット状態のディープコピーを返します。
func (s *SlotState) Clone() *SlotState {
	if s == nil {
		return nil
	}
	c := *s
	c.ValueID = clonePtr(s.ValueID)
	c.Value = clonePtr(s.Value)
	c.Color = clonePtr(s.Color)
	return &c
}

// UnmarshalJSON は欠けた項目に既定値を補うのだ。
// enabled が無ければ true、weight が無ければ 1.0 になります。
// color だけを持つ旧APIのペイロードは color_enabled=true として扱います。
func (s *SlotState) UnmarshalJSON(data []byte) error {
	type Alias SlotState
	*s = SlotState{}
	aux := struct {
		*Alias
		Enabled      *bool    `json:"enabled"`
		ColorEnabled *bool    `json:"color_enabled"`
		Weight       *float64 `json:"weight"`
	}{Alias: (*Alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Enabled = aux.Enabled == nil || *aux.Enabled
	s.Weight = DefaultWeight
	if aux.Weight != nil {
		s.Weight = *aux.Weight
	}
	if aux.ColorEnabled != nil {
		s.ColorEnabled = *aux.ColorEnabled
	} else {
		s.ColorEnabled = deref(s.Color) != ""
	}
	return nil
}

// ClampWeight は重みを [MinWeight, MaxWeight] に収めるのだ。NaN は既定値に戻します。
// 保存された値は変えず、出力時にだけ使います。
func ClampWeight(w float64) float64 {
	if math.IsNaN(w) {
		return DefaultWeight
	}
	return math.Min(MaxWeight, math.Max(MinWeight, w))
}

// Ptr は値のポインタを返す小さなヘルパーです。
func Ptr[T any](v T) *T {
	return &v
}

// IsDefaultWeight は重みが既定値 1.0 とみなせるかどうかを返します。
func IsDefaultWeight(w float64) bool {
	return math.Abs(w-DefaultWeight) < 1e-9
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
