package main

import (
	"github.com/shouni/go-character-kit/cmd"
)

// main はコマンドの解析と実行を cmd パッケージに任せるだけなのだ。
func main() {
	cmd.Execute()
}
