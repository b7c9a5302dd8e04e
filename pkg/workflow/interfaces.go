package workflow

import (
	"context"

	"github.com/shouni/go-character-kit/pkg/catalog"
	"github.com/shouni/go-character-kit/pkg/configstore"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/generator"
)

// Workflow はキャラクタープロンプト生成の各工程をまとめたインターフェースなのだ。
type Workflow interface {
	Store() *catalog.Store
	Configs() *configstore.Store
	NewConfig(name string) *domain.GeneratorConfig
	Randomize(cfg *domain.GeneratorConfig, req RandomizeRequest) generator.Results
	ApplyPalette(cfg *domain.GeneratorConfig, paletteID string) map[string]string
	Render(cfg *domain.GeneratorConfig, lang string) string
	Tokens(cfg *domain.GeneratorConfig, lang string) []string
	Watch(ctx context.Context, onReload func(*catalog.Store)) error
}

// RandomizeRequest はランダム化の対象を表します。
// Category が指定されていればそれを、Slots が空でなければそのスロットを、どちらも無ければ全スロットを対象にするのだ。
type RandomizeRequest struct {
	Slots    []string
	Category string
}
