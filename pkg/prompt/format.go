package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/go-character-kit/pkg/domain"
)

const (
	// LeadingToken はプロンプトの先頭に必ず置かれるトークンなのだ。
	LeadingToken = "1girl"

	// Separator はトークン同士の区切りです。
	Separator = ", "
)

// FormatToken は1スロット分のトークンを組み立てます。
// color が空でなければ "<color> <name>"、重みが 1.0 でなければ "(<token>:<weight>)" になるのだ。
// 重みは [domain.MinWeight, domain.MaxWeight] に収めてから、常に小数点以下1桁で出力します。
func FormatToken(name, color string, weight float64) string {
	token := name
	if color != "" {
		token = color + " " + name
	}
	weight = domain.ClampWeight(weight)
	if !domain.IsDefaultWeight(weight) {
		return fmt.Sprintf("(%s:%.1f)", token, weight)
	}
	return token
}

// Join は先頭トークンとスロットのトークンを連結します。
func Join(tokens []string) string {
	return strings.Join(append([]string{LeadingToken}, tokens...), Separator)
}
