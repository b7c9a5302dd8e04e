package registry

import "slices"

// スロット名の定数です。排他ルールやレンダリングで直接参照されるものだけを定義しています。
const (
	FullBody  = "full_body"
	UpperBody = "upper_body"
	LowerBody = "lower_body"
	Legs      = "legs"
	Pose      = "pose"
	Gesture   = "gesture"
)

// カテゴリ名の定数なのだ。
const (
	CategoryAppearance = "appearance"
	CategoryBody       = "body"
	CategoryExpression = "expression"
	CategoryClothing   = "clothing"
	CategoryPose       = "pose"
	CategoryBackground = "background"
)

// カタログ名の定数です。
const (
	CatalogHair        = "hair"
	CatalogEyes        = "eyes"
	CatalogBody        = "body"
	CatalogExpressions = "expressions"
	CatalogClothing    = "clothing"
	CatalogViewAngles  = "view_angles"
	CatalogPoses       = "poses"
	CatalogBackgrounds = "backgrounds"
	CatalogColors      = "colors"
)

// Definition は1つのスロットの静的な定義です。
// IndexKey が空の場合、カタログの全アイテムをファイル順で使います。
type Definition struct {
	Name     string
	Category string
	Catalog  string
	IndexKey string
	HasColor bool
}

// Categories はセクション単位のランダム化で使うカテゴリの固定順序なのだ。
var Categories = []string{
	CategoryAppearance,
	CategoryBody,
	CategoryExpression,
	CategoryClothing,
	CategoryPose,
	CategoryBackground,
}

var definitions = []Definition{
	// Appearance
	{Name: "hair_style", Category: CategoryAppearance, Catalog: CatalogHair, IndexKey: "style"},
	{Name: "hair_length", Category: CategoryAppearance, Catalog: CatalogHair, IndexKey: "length"},
	{Name: "hair_color", Category: CategoryAppearance, Catalog: CatalogHair, IndexKey: "color"},
	{Name: "hair_texture", Category: CategoryAppearance, Catalog: CatalogHair, IndexKey: "texture"},
	{Name: "eye_color", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "color"},
	{Name: "eye_expression_quality", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "expression_quality"},
	{Name: "eye_shape", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "eye_shape"},
	{Name: "eye_pupil_state", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "pupil_state"},
	{Name: "eye_state", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "eye_state"},
	{Name: "eye_accessories", Category: CategoryAppearance, Catalog: CatalogEyes, IndexKey: "eye_accessories"},

	// Body
	{Name: "body_type", Category: CategoryBody, Catalog: CatalogBody, IndexKey: "body_type"},
	{Name: "height", Category: CategoryBody, Catalog: CatalogBody, IndexKey: "height"},
	{Name: "skin", Category: CategoryBody, Catalog: CatalogBody, IndexKey: "skin"},
	{Name: "age_appearance", Category: CategoryBody, Catalog: CatalogBody, IndexKey: "age_appearance"},
	{Name: "special_features", Category: CategoryBody, Catalog: CatalogBody, IndexKey: "special_features"},

	// Expression
	{Name: "expression", Category: CategoryExpression, Catalog: CatalogExpressions},

	// Clothing
	{Name: "head", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "head", HasColor: true},
	{Name: "neck", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "neck", HasColor: true},
	{Name: UpperBody, Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: UpperBody, HasColor: true},
	{Name: "waist", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "waist", HasColor: true},
	{Name: LowerBody, Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: LowerBody, HasColor: true},
	{Name: FullBody, Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: FullBody, HasColor: true},
	{Name: "outerwear", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "outerwear", HasColor: true},
	{Name: "hands", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "hands", HasColor: true},
	{Name: Legs, Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: Legs, HasColor: true},
	{Name: "feet", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "feet", HasColor: true},
	{Name: "accessory", Category: CategoryClothing, Catalog: CatalogClothing, IndexKey: "accessory", HasColor: true},

	// Pose
	{Name: "view_angle", Category: CategoryPose, Catalog: CatalogViewAngles},
	{Name: Pose, Category: CategoryPose, Catalog: CatalogPoses},
	{Name: Gesture, Category: CategoryPose, Catalog: CatalogPoses, IndexKey: "gesture"},

	// Background
	{Name: "background", Category: CategoryBackground, Catalog: CatalogBackgrounds},
}

// renderOrder はプロンプトの出力順です。カタログ順とは無関係な出力契約なので、変更すると出力が変わるのだ。
var renderOrder = []string{
	"hair_color", "hair_length", "hair_style", "hair_texture",
	"eye_color", "eye_expression_quality", "eye_shape", "eye_pupil_state",
	"eye_state", "eye_accessories",
	"body_type", "height", "skin", "age_appearance", "special_features",
	"expression",
	FullBody, "head", "neck", UpperBody, "waist", LowerBody,
	"outerwear", "hands", Legs, "feet", "accessory",
	"view_angle", Pose, Gesture,
	"background",
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Name] = d
	}
	return m
}()

// Lookup はスロット名から定義を引きます。未知のスロットは ok=false を返すのだ。
func Lookup(name string) (Definition, bool) {
	d, ok := byName[name]
	return d, ok
}

// Has reports whether name is a registered slot.
func Has(name string) bool {
	_, ok := byName[name]
	return ok
}

// Definitions は定義順の全スロット定義のコピーを返します。
func Definitions() []Definition {
	return slices.Clone(definitions)
}

// Names は定義順のスロット名一覧を返すのだ。ランダム化の走査順にもなります。
func Names() []string {
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	return names
}

// RenderOrder はプロンプトの出力順のスロット名一覧を返します。
func RenderOrder() []string {
	return slices.Clone(renderOrder)
}

// ByCategory は指定カテゴリに属するスロット名を定義順で返すのだ。
func ByCategory(category string) []string {
	var names []string
	for _, d := range definitions {
		if d.Category == category {
			names = append(names, d.Name)
		}
	}
	return names
}

// IsCategory reports whether category is one of Categories.
func IsCategory(category string) bool {
	return slices.Contains(Categories, category)
}
