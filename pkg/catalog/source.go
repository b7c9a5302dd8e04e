package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"

	"gopkg.in/yaml.v3"
)

// Source はカタログ名とデータルートからの相対パスの組なのだ。
type Source struct {
	Name string
	Path string
}

// DefaultSources は標準のカタログファイル配置を返します。
func DefaultSources() []Source {
	return []Source{
		{Name: registry.CatalogClothing, Path: "clothing/clothing_list.json"},
		{Name: registry.CatalogExpressions, Path: "expressions/female_expressions.json"},
		{Name: registry.CatalogHair, Path: "hair/hair_catalog.json"},
		{Name: registry.CatalogEyes, Path: "eyes/eye_catalog.json"},
		{Name: registry.CatalogBody, Path: "body/body_features.json"},
		{Name: registry.CatalogPoses, Path: "poses/poses.json"},
		{Name: registry.CatalogViewAngles, Path: "view_angles/view_angles.json"},
		{Name: registry.CatalogBackgrounds, Path: "backgrounds/backgrounds.json"},
		{Name: registry.CatalogColors, Path: "colors/color_palettes.json"},
	}
}

// rawCatalog はアイテム系カタログファイルの構造です。
type rawCatalog struct {
	Category             string               `json:"category" yaml:"category"`
	Items                []domain.CatalogItem `json:"items" yaml:"items"`
	IndexByBodyPart      map[string][]string  `json:"index_by_body_part" yaml:"index_by_body_part"`
	IndexByCategory      map[string][]string  `json:"index_by_category" yaml:"index_by_category"`
	IndexByEmotionFamily map[string][]string  `json:"index_by_emotion_family" yaml:"index_by_emotion_family"`
}

func (r rawCatalog) indexes() map[string]map[string][]string {
	out := make(map[string]map[string][]string)
	if r.IndexByBodyPart != nil {
		out[IndexBodyPart] = r.IndexByBodyPart
	}
	if r.IndexByCategory != nil {
		out[IndexCategory] = r.IndexByCategory
	}
	if r.IndexByEmotionFamily != nil {
		out[IndexEmotionFamily] = r.IndexByEmotionFamily
	}
	return out
}

// DecodeCatalog はバイト列をカタログとして解析するのだ。format は "json" か "yaml" です。
func DecodeCatalog(name, format string, data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := decode(format, data, &raw); err != nil {
		return nil, fmt.Errorf("カタログ '%s' の解析に失敗しました: %w", name, err)
	}
	return NewCatalog(name, raw.Items, raw.indexes()), nil
}

// DecodeColors は colors カタログを解析します。
func DecodeColors(format string, data []byte) (*domain.ColorStore, error) {
	var cs domain.ColorStore
	if err := decode(format, data, &cs); err != nil {
		return nil, fmt.Errorf("カラーカタログの解析に失敗しました: %w", err)
	}
	return &cs, nil
}

func decode(format string, data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("内容が空です")
	}
	switch format {
	case "yaml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

// formatOf はファイル拡張子からデコード形式を決めるのだ。
func formatOf(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// readSource はソースを読み込みます。.json が無ければ同名の .yaml / .yml を探すのだ。
func readSource(fsys fs.FS, src Source) (data []byte, usedPath string, err error) {
	candidates := []string{src.Path}
	if strings.EqualFold(path.Ext(src.Path), ".json") {
		base := strings.TrimSuffix(src.Path, path.Ext(src.Path))
		candidates = append(candidates, base+".yaml", base+".yml")
	}

	var firstErr error
	for _, p := range candidates {
		data, err := fs.ReadFile(fsys, p)
		if err == nil {
			return data, p, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, p, err
		}
	}
	return nil, src.Path, firstErr
}
