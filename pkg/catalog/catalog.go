package catalog

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/shouni/go-character-kit/pkg/domain"
)

// 二次インデックスの名前なのだ。カタログファイルの index_by_<name> に対応します。
const (
	IndexBodyPart      = "body_part"
	IndexCategory      = "category"
	IndexEmotionFamily = "emotion_family"
)

// Catalog はアイテム集合と二次インデックスを保持します。生成後は読み取り専用です。
// インデックスが参照する ID は必ずアイテム集合に存在するのだ。
type Catalog struct {
	name    string
	items   domain.CatalogItems
	byID    map[string]int
	indexes map[string]map[string][]string
}

// NewCatalog はアイテムとインデックスからカタログを構築するのだ。
// ID が空のアイテムと重複IDの2件目以降は捨て、存在しない ID を指すインデックス項目も取り除きます。
func NewCatalog(name string, items []domain.CatalogItem, indexes map[string]map[string][]string) *Catalog {
	c := &Catalog{
		name:    name,
		items:   make(domain.CatalogItems, 0, len(items)),
		byID:    make(map[string]int, len(items)),
		indexes: make(map[string]map[string][]string, len(indexes)),
	}

	for _, item := range items {
		if item.ID == "" {
			slog.Warn("IDのないアイテムをスキップしたのだ", "catalog", name, "name", item.Name)
			continue
		}
		if _, dup := c.byID[item.ID]; dup {
			slog.Warn("重複したアイテムIDをスキップしたのだ", "catalog", name, "id", item.ID)
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	for indexName, index := range indexes {
		if index == nil {
			continue
		}
		cleaned := make(map[string][]string, len(index))
		for key, ids := range index {
			kept := make([]string, 0, len(ids))
			for _, id := range ids {
				if _, ok := c.byID[id]; !ok {
					slog.Warn("インデックスが存在しないIDを参照しているのだ", "catalog", name, "index", indexName, "key", key, "id", id)
					continue
				}
				kept = append(kept, id)
			}
			cleaned[key] = kept
		}
		c.indexes[indexName] = cleaned
	}
	return c
}

// Name はカタログ名を返します。
func (c *Catalog) Name() string { return c.name }

// Len はアイテム数を返します。
func (c *Catalog) Len() int { return len(c.items) }

// Items はファイル順の全アイテムのコピーを返すのだ。
func (c *Catalog) Items() domain.CatalogItems {
	return c.items.Clone()
}

// Item は ID からアイテムを引きます。
func (c *Catalog) Item(id string) (domain.CatalogItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.items[i], true
}

// HasIndex reports whether the catalog carries the named secondary index.
func (c *Catalog) HasIndex(index string) bool {
	_, ok := c.indexes[index]
	return ok
}

// IndexNames はカタログが持つインデックス名をソートして返します。
func (c *Catalog) IndexNames() []string {
	return slices.Sorted(maps.Keys(c.indexes))
}

// IndexKeys はインデックスのキー一覧をソートして返すのだ。
func (c *Catalog) IndexKeys(index string) []string {
	return slices.Sorted(maps.Keys(c.indexes[index]))
}

// IDs はインデックスのキーに対応する ID 列を返します。存在しなければ空なのだ。
func (c *Catalog) IDs(index, key string) []string {
	return slices.Clone(c.indexes[index][key])
}

// PrimaryIndex はスロット解決に使うインデックスを返します。
// 部位インデックスを持つ衣装系カタログはそれを、それ以外はカテゴリインデックスを使うのだ。
func (c *Catalog) PrimaryIndex() string {
	if c.HasIndex(IndexBodyPart) {
		return IndexBodyPart
	}
	return IndexCategory
}

// Lookup はインデックスのキーに対応するアイテムをインデックス順で返します。
// キーが無い場合はエラーではなく空のスライスなのだ。
func (c *Catalog) Lookup(index, key string) domain.CatalogItems {
	ids := c.indexes[index][key]
	out := make(domain.CatalogItems, 0, len(ids))
	for _, id := range ids {
		if item, ok := c.Item(id); ok {
			out = append(out, item)
		}
	}
	return out.Clone()
}
