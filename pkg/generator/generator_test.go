package generator

import (
	"math/rand/v2"
	"testing"

	"github.com/shouni/go-character-kit/examples"
	"github.com/shouni/go-character-kit/pkg/catalog"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/prompt"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/shouni/go-character-kit/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, seed uint64) (*Generator, *catalog.Store) {
	t.Helper()
	store, err := catalog.Load(examples.FS(), catalog.DefaultSources())
	require.NoError(t, err)
	g, err := New(store, sampler.New(store, sampler.WithRand(rand.New(rand.NewPCG(seed, seed+1)))))
	require.NoError(t, err)
	return g, store
}

// fixedSampler は常に同じアイテムを返す Sampler なのだ。
type fixedSampler struct {
	items   map[string]domain.CatalogItem
	palette map[string][]string
}

func (f fixedSampler) Sample(slot string) (domain.CatalogItem, bool) {
	item, ok := f.items[slot]
	return item, ok
}

func (f fixedSampler) SampleColorFromPalette(id string) (string, bool) {
	colors := f.palette[id]
	if len(colors) == 0 {
		return "", false
	}
	return colors[0], true
}

func (f fixedSampler) SampleRandomColor() string { return "green" }

func TestNew_Validation(t *testing.T) {
	_, store := setup(t, 1)
	_, err := New(nil, sampler.New(store))
	assert.Error(t, err)
	_, err = New(store, nil)
	assert.Error(t, err)
}

func TestRandomizeAll(t *testing.T) {
	g, store := setup(t, 7)

	t.Run("全スロットに選択肢の値が入るのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("all")
		results := g.RandomizeAll(cfg)

		assert.Len(t, results, len(registry.Names()))
		for name, a := range results {
			if a.ValueID == nil {
				if name == registry.Legs {
					continue
				}
				assert.Empty(t, store.Options(name), "値が無いのは選択肢が空のときだけなのだ: %s", name)
				continue
			}
			_, ok := store.Options(name).FindByID(*a.ValueID)
			assert.True(t, ok, name)
			assert.Equal(t, *a.ValueID, *cfg.Slots[name].ValueID)
		}
	})

	t.Run("ロックされたスロットは変更しないのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("locked")
		cfg.Slots["hair_color"] = &domain.SlotState{Enabled: true, Locked: true, ValueID: domain.Ptr("black_hair"), Value: domain.Ptr("black hair"), Weight: 1.0}

		for range 20 {
			results := g.RandomizeAll(cfg)
			assert.NotContains(t, results, "hair_color")
			assert.Equal(t, "black_hair", *cfg.Slots["hair_color"].ValueID)
		}
	})

	t.Run("全身モードでは full_body と上下が同時に出ないのだ", func(t *testing.T) {
		r := prompt.NewRenderer(store)
		for seed := range uint64(30) {
			g, _ := setup(t, seed)
			cfg := domain.NewGeneratorConfig("full")
			cfg.FullBodyMode = true
			results := g.RandomizeAll(cfg)

			require.NotNil(t, results[registry.FullBody].ValueID)
			assert.Nil(t, results[registry.UpperBody].ValueID)
			assert.Nil(t, results[registry.LowerBody].ValueID)
			assert.False(t, cfg.Slots[registry.UpperBody].HasValue())

			fullBody, _ := store.Options(registry.FullBody).FindByID(*results[registry.FullBody].ValueID)
			tokens := r.Tokens(cfg.Slots, cfg.FullBodyMode, "")
			assert.Contains(t, tokens, fullBody.Name)
		}
	})

	t.Run("脚を覆う lower_body なら legs は空になるのだ", func(t *testing.T) {
		for seed := range uint64(30) {
			g, _ := setup(t, seed)
			cfg := domain.NewGeneratorConfig("legs")
			results := g.RandomizeAll(cfg)

			lower := results[registry.LowerBody]
			if store.LowerBodyCoversLegs(lower.ValueID, lower.Value) {
				assert.Nil(t, results[registry.Legs].ValueID, "seed %d", seed)
			} else {
				assert.NotNil(t, results[registry.Legs].ValueID, "seed %d", seed)
			}
		}
	})
}

func TestRandomizeSlots(t *testing.T) {
	g, _ := setup(t, 3)

	t.Run("指定したスロットだけ変更するのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("partial")
		results := g.RandomizeSlots(cfg, "hair_style", "tail", "hair_style")

		assert.Equal(t, []string{"hair_style"}, keys(results))
		assert.True(t, cfg.Slots["hair_style"].HasValue())
		assert.False(t, cfg.Slots["hair_color"].HasValue())
		assert.NotContains(t, cfg.Slots, "tail", "未登録のスロットは作らないのだ")
	})

	t.Run("batch 外の上下は全身モードでも残るのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("outside")
		cfg.FullBodyMode = true
		cfg.Slots[registry.UpperBody].SetValue(&domain.CatalogItem{ID: "shirt", Name: "shirt"})

		g.RandomizeSlots(cfg, registry.FullBody)
		assert.True(t, cfg.Slots[registry.UpperBody].HasValue())
	})

	t.Run("選択肢が無いスロットは未選択になるのだ", func(t *testing.T) {
		store, err := catalog.Load(examples.FS(), []catalog.Source{{Name: registry.CatalogHair, Path: "hair/hair_catalog.json"}})
		require.NoError(t, err)
		g, err := New(store, sampler.New(store))
		require.NoError(t, err)

		cfg := domain.NewGeneratorConfig("empty")
		cfg.Slots["background"].SetValue(&domain.CatalogItem{ID: "beach", Name: "beach"})
		results := g.RandomizeSlots(cfg, "background")
		assert.Nil(t, results["background"].ValueID)
		assert.False(t, cfg.Slots["background"].HasValue())
	})

	t.Run("nil の設定は空の結果なのだ", func(t *testing.T) {
		assert.Empty(t, g.RandomizeSlots(nil, "hair_style"))
	})
}

func TestRandomizeCategory(t *testing.T) {
	g, _ := setup(t, 5)

	cfg := domain.NewGeneratorConfig("category")
	results := g.RandomizeCategory(cfg, registry.CategoryBody)
	assert.ElementsMatch(t, registry.ByCategory(registry.CategoryBody), keys(results))
	assert.False(t, cfg.Slots["hair_style"].HasValue())

	assert.Empty(t, g.RandomizeCategory(cfg, "weapons"))
}

func TestRandomize_ColorModes(t *testing.T) {
	s := fixedSampler{
		items: map[string]domain.CatalogItem{
			registry.UpperBody: {ID: "shirt", Name: "shirt"},
			"hair_style":       {ID: "ponytail", Name: "ponytail"},
		},
		palette: map[string][]string{"pastel": {"pink"}},
	}
	_, store := setup(t, 1)
	g, err := New(store, s)
	require.NoError(t, err)

	t.Run("none は色を変更しないのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("none")
		cfg.Slots[registry.UpperBody].SetColor("blue")
		results := g.RandomizeSlots(cfg, registry.UpperBody)
		assert.Equal(t, "blue", *results[registry.UpperBody].Color)
	})

	t.Run("palette はパレットから選ぶのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("palette")
		cfg.ColorMode = domain.ColorModePalette
		cfg.ActivePaletteID = domain.Ptr("pastel")
		results := g.RandomizeSlots(cfg, registry.UpperBody, "hair_style")
		assert.Equal(t, "pink", *results[registry.UpperBody].Color)
		assert.Nil(t, results["hair_style"].Color, "has_color でないスロットには付けないのだ")
	})

	t.Run("未知のパレットは色を変更しないのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("unknown")
		cfg.ColorMode = domain.ColorModePalette
		cfg.ActivePaletteID = domain.Ptr("neon")
		results := g.RandomizeSlots(cfg, registry.UpperBody)
		assert.Nil(t, results[registry.UpperBody].Color)
	})

	t.Run("random は個別色から選ぶのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("random")
		cfg.ColorMode = domain.ColorModeRandom
		results := g.RandomizeSlots(cfg, registry.UpperBody)
		assert.Equal(t, "green", *results[registry.UpperBody].Color)
		assert.True(t, cfg.Slots[registry.UpperBody].ColorEnabled)
	})

	t.Run("値が無いスロットには色を付けないのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("novalue")
		cfg.ColorMode = domain.ColorModeRandom
		results := g.RandomizeSlots(cfg, registry.Legs)
		assert.Nil(t, results[registry.Legs].ValueID)
		assert.Nil(t, results[registry.Legs].Color)
	})
}

func TestRandomize_PoseUsesHands(t *testing.T) {
	_, store := setup(t, 1)
	newGenerator := func(pose string) *Generator {
		g, err := New(store, fixedSampler{items: map[string]domain.CatalogItem{
			registry.Pose:    {ID: pose, Name: pose},
			registry.Gesture: {ID: "peace_sign", Name: "peace sign"},
		}})
		require.NoError(t, err)
		return g
	}

	t.Run("手を使うポーズが選ばれたら gesture を無効にするのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("hands")
		newGenerator("hands_on_hips").RandomizeSlots(cfg, registry.Pose, registry.Gesture)
		assert.False(t, cfg.Slots[registry.Gesture].Enabled)
		assert.Equal(t, "peace_sign", *cfg.Slots[registry.Gesture].ValueID)
		assert.NotContains(t, prompt.NewRenderer(store).Render(cfg, ""), "peace sign")
	})

	t.Run("手を使わないポーズなら有効のままなのだ", func(t *testing.T) {
		cfg := domain.NewGeneratorConfig("free")
		newGenerator("standing").RandomizeSlots(cfg, registry.Pose, registry.Gesture)
		assert.True(t, cfg.Slots[registry.Gesture].Enabled)
	})
}

func TestApplyPalette(t *testing.T) {
	g, store := setup(t, 11)
	pastel, ok := store.Palette("pastel")
	require.True(t, ok)

	cfg := domain.NewGeneratorConfig("apply")
	cfg.Slots[registry.UpperBody].SetValue(&domain.CatalogItem{ID: "shirt", Name: "shirt"})
	cfg.Slots[registry.LowerBody].SetValue(&domain.CatalogItem{ID: "skirt", Name: "skirt"})
	cfg.Slots["feet"].SetValue(&domain.CatalogItem{ID: "boots", Name: "boots"})
	cfg.Slots["feet"].Locked = true
	cfg.Slots["hands"].SetValue(&domain.CatalogItem{ID: "gloves", Name: "gloves"})
	cfg.Slots["hands"].Enabled = false
	cfg.Slots["hair_style"].SetValue(&domain.CatalogItem{ID: "ponytail", Name: "ponytail"})

	colors := g.ApplyPalette(cfg, "pastel")
	assert.ElementsMatch(t, []string{registry.UpperBody, registry.LowerBody}, keys(colors))
	for slot, c := range colors {
		assert.Contains(t, pastel.Colors, c)
		got, ok := cfg.Slots[slot].ActiveColor()
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "pastel", cfg.PaletteID())
	assert.Nil(t, cfg.Slots["feet"].Color)

	t.Run("未知のパレットは何もしないのだ", func(t *testing.T) {
		before := cfg.Clone()
		assert.Empty(t, g.ApplyPalette(cfg, "neon"))
		assert.Equal(t, before, cfg)
	})
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
