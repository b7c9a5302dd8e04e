package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/shouni/go-character-kit/pkg/workflow"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultEnvFile        = ".env"
	DefaultConfigDir      = workflow.DefaultConfigDir
	DefaultOutputLanguage = workflow.DefaultOutputLanguage
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	DataDir        string
	ConfigDir      string
	OutputLanguage string
	Seed           uint64

	Options GenerateOptions
}

// LoadConfig は env ファイルと環境変数から設定を読み込み、構造体を返すのだ！
// envFile が空ならカレントディレクトリの .env を任意で読みます。
// 明示された envFile が読めない場合はエラーです。
// 既に設定されている環境変数は env ファイルで上書きしません。
func LoadConfig(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(envutil.GetEnv("CHARA_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("CHARA_SEED が不正です: %w", err)
	}

	cfg := &Config{
		DataDir:        envutil.GetEnv("CHARA_DATA_DIR", ""),
		ConfigDir:      envutil.GetEnv("CHARA_CONFIG_DIR", DefaultConfigDir),
		OutputLanguage: envutil.GetEnv("CHARA_OUTPUT_LANGUAGE", DefaultOutputLanguage),
		Seed:           seed,
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		slog.Debug("env ファイルを読み込んだのだ", "path", path)
	case explicit:
		return fmt.Errorf("env ファイル '%s' の読み込みに失敗しました: %w", path, err)
	case errors.Is(err, fs.ErrNotExist):
		// .env は任意なのだ
	default:
		slog.Warn(".env の読み込みに失敗したので環境変数だけを使うのだ", "path", path, "error", err)
	}
	return nil
}

// Workflow は CLI フラグを反映した workflow.Config を返します。フラグが空なら環境設定を使うのだ。
func (c *Config) Workflow() workflow.Config {
	wc := workflow.Config{
		DataDir:        c.DataDir,
		ConfigDir:      c.ConfigDir,
		OutputLanguage: c.OutputLanguage,
		Seed:           c.Seed,
	}
	if c.Options.DataDir != "" {
		wc.DataDir = c.Options.DataDir
	}
	if c.Options.ConfigDir != "" {
		wc.ConfigDir = c.Options.ConfigDir
	}
	if c.Options.Language != "" {
		wc.OutputLanguage = c.Options.Language
	}
	if c.Options.Seed != 0 {
		wc.Seed = c.Options.Seed
	}
	return wc
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// カタログ・設定の場所
	DataDir   string // --data-dir
	ConfigDir string // --config-dir

	// 出力
	Language string // --lang

	// ランダム化
	Seed      uint64 // --seed
	Category  string // --category
	ColorMode string // --color-mode
	Palette   string // --palette
	FullBody  bool   // --full-body
	SaveAs    string // --save

	// 描画
	ConfigName string // --name
	ConfigFile string // --file
	Slot       string // --slot
	Tokens     bool   // --tokens
}
