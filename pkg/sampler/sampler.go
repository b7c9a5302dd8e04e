package sampler

import (
	"math/rand/v2"

	"github.com/shouni/go-character-kit/pkg/domain"
)

// FallbackColors は色カタログが空のときに使う組み込みの色なのだ。
var FallbackColors = []string{"white", "black", "red", "blue", "pink", "purple", "green", "yellow"}

// Source はサンプリング対象を提供するカタログなのだ。*catalog.Store が満たします。
type Source interface {
	Options(slot string) domain.CatalogItems
	Palette(id string) (domain.ColorPalette, bool)
	IndividualColors() []string
}

// Option は Sampler の設定を変更します。
type Option func(*Sampler)

// WithRand はテストなどで再現性のある乱数源を注入するのだ。
// *rand.Rand はゴルーチン安全ではないので、共有する場合は呼び出し側で直列化してください。
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) {
		if r != nil {
			s.intN = r.IntN
		}
	}
}

// Sampler はカタログから一様に値を選びます。呼び出し間で状態は持たないのだ。
type Sampler struct {
	source Source
	intN   func(n int) int
}

// New は Source から Sampler を作成します。既定ではパッケージレベルの乱数源を使うのだ。
func New(source Source, opts ...Option) *Sampler {
	s := &Sampler{
		source: source,
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample はスロットの現在の選択肢から1件を一様に選ぶのだ。
// 選択肢が空、または未知のスロットなら ok=false です。
func (s *Sampler) Sample(slot string) (domain.CatalogItem, bool) {
	options := s.source.Options(slot)
	if len(options) == 0 {
		return domain.CatalogItem{}, false
	}
	return options[s.intN(len(options))], true
}

// SampleColorFromPalette はパレットの色から1つ選びます。パレットが無いか空なら ok=false なのだ。
func (s *Sampler) SampleColorFromPalette(paletteID string) (string, bool) {
	p, ok := s.source.Palette(paletteID)
	if !ok {
		return "", false
	}
	return s.pick(p.Colors)
}

// SampleRandomColor は個別色の一覧から1つ選ぶのだ。一覧が空なら FallbackColors を使います。
func (s *Sampler) SampleRandomColor() string {
	if c, ok := s.pick(s.source.IndividualColors()); ok {
		return c
	}
	c, _ := s.pick(FallbackColors)
	return c
}

func (s *Sampler) pick(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[s.intN(len(values))], true
}
