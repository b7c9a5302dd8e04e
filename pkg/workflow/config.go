package workflow

// デフォルト値の定義なのだ
const (
	DefaultConfigDir      = "configs"
	DefaultOutputLanguage = "en"
)

// Config は Manager を動作させるための基本設定なのだ。
type Config struct {
	// --- Catalog Settings ---
	// DataDir が空の場合は埋め込みのデモカタログを使います。
	DataDir string

	// --- Storage Settings ---
	ConfigDir string

	// --- Rendering Settings ---
	OutputLanguage string

	// --- Sampling Settings ---
	// Seed が 0 以外なら乱数列を固定するのだ。
	Seed uint64
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数なのだ。
func DefaultConfig() Config {
	return Config{
		ConfigDir:      DefaultConfigDir,
		OutputLanguage: DefaultOutputLanguage,
	}
}
