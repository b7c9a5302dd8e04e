package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shouni/go-character-kit/pkg/registry"
)

// DefaultConfigName は名前のない設定に付ける名前なのだ。
const DefaultConfigName = "Untitled"

// ErrMalformedConfig は設定ファイルの構造が壊れている場合のエラーです。
var ErrMalformedConfig = errors.New("malformed generator config")

// ColorMode は衣装スロットの色の決め方なのだ。
type ColorMode string

const (
	ColorModeNone    ColorMode = "none"
	ColorModePalette ColorMode = "palette"
	ColorModeRandom  ColorMode = "random"
)

// ParseColorMode は文字列を ColorMode に変換します。空文字は none として扱うのだ。
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case "":
		return ColorModeNone, nil
	case ColorModeNone, ColorModePalette, ColorModeRandom:
		return m, nil
	default:
		return "", fmt.Errorf("不明なカラーモードです: '%s'", s)
	}
}

// GeneratorConfig はスロット状態の集合とグローバル設定をまとめた名前付きの設定なのだ。
// メモリ上の一時的なオブジェクトで、永続化は明示的な保存でのみ行います。
type GeneratorConfig struct {
	Name            string                `json:"name"`
	CreatedAt       Timestamp             `json:"created_at"`
	ColorMode       ColorMode             `json:"color_mode"`
	ActivePaletteID *string               `json:"active_palette_id"`
	FullBodyMode    bool                  `json:"full_body_mode"`
	Slots           map[string]*SlotState `json:"slots"`
}

// NewGeneratorConfig は登録済みの全スロットに既定の状態を持つ設定を作るのだ。
// 作成日時はこの時点で刻みます。
func NewGeneratorConfig(name string) *GeneratorConfig {
	if name == "" {
		name = DefaultConfigName
	}
	cfg := &GeneratorConfig{
		Name:      name,
		CreatedAt: Now(),
		ColorMode: ColorModeNone,
		Slots:     make(map[string]*SlotState),
	}
	cfg.EnsureSlots()
	return cfg
}

// EnsureSlots は欠けている登録済みスロットに既定の状態を補います。
// 未登録のスロットはそのまま残すのだ（描画とランダム化では無視されます）。
func (c *GeneratorConfig) EnsureSlots() {
	if c.Slots == nil {
		c.Slots = make(map[string]*SlotState)
	}
	for _, name := range registry.Names() {
		if c.Slots[name] == nil {
			c.Slots[name] = DefaultSlotState()
		}
	}
	for name, s := range c.Slots {
		if s == nil {
			c.Slots[name] = DefaultSlotState()
		}
	}
}

// Slot は指定スロットの状態を返します。無ければ既定状態を作って登録するのだ。
func (c *GeneratorConfig) Slot(name string) *SlotState {
	if c.Slots == nil {
		c.Slots = make(map[string]*SlotState)
	}
	s, ok := c.Slots[name]
	if !ok || s == nil {
		s = DefaultSlotState()
		c.Slots[name] = s
	}
	return s
}

// PaletteID は有効なパレットIDを返します。未設定なら空文字なのだ。
func (c *GeneratorConfig) PaletteID() string {
	return deref(c.ActivePaletteID)
}

// SlotNames はスロット名をソートして返すのだ。
func (c *GeneratorConfig) SlotNames() []string {
	return slices.Sorted(maps.Keys(c.Slots))
}

// Clone は設定のディープコピーを返します。
func (c *GeneratorConfig) Clone() *GeneratorConfig {
	if c == nil {
		return nil
	}
	copied := *c
	copied.ActivePaletteID = clonePtr(c.ActivePaletteID)
	copied.Slots = make(map[string]*SlotState, len(c.Slots))
	for name, s := range c.Slots {
		copied.Slots[name] = s.Clone()
	}
	return &copied
}

// MarshalConfig は設定をインデント付きJSONに変換するのだ。作成日時が空なら現在時刻を刻みます。
func MarshalConfig(cfg *GeneratorConfig) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("設定が nil です")
	}
	out := cfg.Clone()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = Now()
	}
	if out.ColorMode == "" {
		out.ColorMode = ColorModeNone
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("設定のエンコードに失敗しました: %w", err)
	}
	return data, nil
}

// ParseConfig はJSONバイト列から設定を復元します。
// 構造が壊れている場合は ErrMalformedConfig を返し、勝手に既定値で作り直すことはしないのだ。
func ParseConfig(data []byte) (*GeneratorConfig, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: 内容が空です", ErrMalformedConfig)
	}

	var cfg GeneratorConfig
	if err := json.Unmarshal(trimmed, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}

	mode, err := ParseColorMode(string(cfg.ColorMode))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}
	cfg.ColorMode = mode
	if cfg.Name == "" {
		cfg.Name = DefaultConfigName
	}
	cfg.EnsureSlots()
	return &cfg, nil
}

// Timestamp は作成日時です。RFC 3339 に加えてタイムゾーンなしの ISO 形式も読み込めるのだ。
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Now は秒未満を切り捨てた現在時刻(UTC)を返します。
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
}

// MarshalJSON は RFC 3339 形式で出力するのだ。ゼロ値は null になります。
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON parses any of timestampLayouts; zone-less values are read as UTC.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("created_at は文字列である必要があります: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: parsed}
			return nil
		}
	}
	return fmt.Errorf("created_at の形式が不正です: '%s'", s)
}
