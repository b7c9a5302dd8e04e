package domain

import (
	"fmt"
)

// CatalogItem はカタログに登録された選択肢1件を表します。ロード後は変更しません。
type CatalogItem struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`                               // プロンプトに出力される表示名
	Category string            `json:"category,omitempty" yaml:"category,omitempty"`   // index_by_category 用の分類キー
	BodyPart string            `json:"body_part,omitempty" yaml:"body_part,omitempty"` // index_by_body_part 用の分類キー
	Aliases  []string          `json:"aliases,omitempty" yaml:"aliases,omitempty"`     // コアでは使用しない
	NameI18n map[string]string `json:"name_i18n,omitempty" yaml:"name_i18n,omitempty"` // 言語コード -> 表示名

	// 排他ルール用の属性なのだ
	CoversLegs bool `json:"covers_legs,omitempty" yaml:"covers_legs,omitempty"`
	UsesHands  bool `json:"uses_hands,omitempty" yaml:"uses_hands,omitempty"`
}

// String はアイテムの情報を文字列で返すのだ。
func (i CatalogItem) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.ID)
}

// ClassKey はアイテムの分類キーを返します。body_part を持つ衣装アイテムはそちらを優先します。
func (i CatalogItem) ClassKey() string {
	if i.BodyPart != "" {
		return i.BodyPart
	}
	return i.Category
}

// DisplayName は lang に対応するラベルがあればそれを、なければカタログ上の名前を返すのだ。
func (i CatalogItem) DisplayName(lang string) string {
	return localize(i.Name, i.NameI18n, lang)
}

// ColorPalette は名前付きの色の集合です。
type ColorPalette struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	NameI18n    map[string]string `json:"name_i18n,omitempty" yaml:"name_i18n,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Colors      []string          `json:"colors" yaml:"colors"`
}

// DisplayName はパレットの表示名を返します。
func (p ColorPalette) DisplayName(lang string) string {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return localize(name, p.NameI18n, lang)
}

// ColorStore は colors カタログの中身なのだ。
// IndividualColors はパレット未選択時のランダム色の母集団になります。
type ColorStore struct {
	Palettes             []ColorPalette               `json:"palettes" yaml:"palettes"`
	IndividualColors     []string                     `json:"individual_colors" yaml:"individual_colors"`
	IndividualColorsI18n map[string]map[string]string `json:"individual_colors_i18n,omitempty" yaml:"individual_colors_i18n,omitempty"`
}

// LocalizeColor は色トークンを lang の表示ラベルに置き換えるのだ。ラベルがなければそのまま返します。
func (c *ColorStore) LocalizeColor(color, lang string) string {
	if c == nil {
		return color
	}
	return localize(color, c.IndividualColorsI18n[color], lang)
}

func localize(base string, labels map[string]string, lang string) string {
	if lang == "" || len(labels) == 0 {
		return base
	}
	if label, ok := labels[lang]; ok && label != "" {
		return label
	}
	return base
}
