package domain

import (
	"slices"
	"strings"
)

// CatalogItems は検索用のヘルパーを持つアイテムのスライスなのだ。
type CatalogItems []CatalogItem

// FindByID は ID が一致するアイテムを返します。
func (items CatalogItems) FindByID(id string) (CatalogItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// FindByName は表示名が一致するアイテムを返すのだ。
// 完全一致を優先し、見つからなければ大文字小文字を無視して探します。
func (items CatalogItems) FindByName(name string) (CatalogItem, bool) {
	if name == "" {
		return CatalogItem{}, false
	}
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// Names は表示名の一覧を返します。名前が空のアイテムは ID で代用するのだ。
func (items CatalogItems) Names() []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
			continue
		}
		names = append(names, item.ID)
	}
	return names
}

// Clone はアイテムのスライスを防御的にコピーするのだ。
func (items CatalogItems) Clone() CatalogItems {
	copied := make(CatalogItems, len(items))
	for i, item := range items {
		item.Aliases = slices.Clone(item.Aliases)
		copied[i] = item
	}
	return copied
}
