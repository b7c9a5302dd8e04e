package generator

import (
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/rules"
)

// Sampler はスロットの値と色を選ぶコンポーネントなのだ。*sampler.Sampler が満たします。
type Sampler interface {
	Sample(slot string) (domain.CatalogItem, bool)
	SampleColorFromPalette(paletteID string) (string, bool)
	SampleRandomColor() string
}

// Catalog は排他ルールの評価に使うカタログです。*catalog.Store が満たします。
type Catalog interface {
	rules.LegCoverage
	rules.HandUsage
}
