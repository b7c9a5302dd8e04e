package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/workflow"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

const appName = "chara-prompt"

// NewRootCmd はすべてのサブコマンドを登録したルートコマンドを作るのだ。
// 共通の --verbose / --config（env ファイル）は clibase が定義し、
// アプリ固有のフラグの値はコマンドツリーごとに独立しています。
func NewRootCmd() *cobra.Command {
	opts := &config.GenerateOptions{}

	rootCmd := clibase.NewRootCmd(
		appName,
		func(cmd *cobra.Command) { addAppFlags(cmd, opts) },
		preRunAppE,
	)
	rootCmd.Short = "スロットを組み合わせてキャラクター用の画像生成プロンプトを作るのだ。"
	rootCmd.Long = `カタログから髪型・表情・衣装・ポーズなどのスロットを選び、
"1girl, ..." 形式のタグ列プロンプトを組み立てるのだ。
スロットはロック・重み・色を持ち、設定として保存できるのだよ。`
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newSlotsCmd(opts),
		newPalettesCmd(opts),
		newRenderCmd(opts),
		newRandomizeCmd(opts),
		newConfigCmd(opts),
		newWatchCmd(opts),
	)
	return rootCmd
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command, opts *config.GenerateOptions) {
	// --- カタログ・設定の場所 ---
	rootCmd.PersistentFlags().StringVarP(&opts.DataDir, "data-dir", "d", "", "カタログのデータディレクトリなのだ（未指定なら CHARA_DATA_DIR、それも無ければ埋め込みのデモカタログ）。")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "設定ファイルの保存先なのだ（未指定なら CHARA_CONFIG_DIR）。")

	// --- 出力 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Language, "lang", "l", "", "出力言語コードなのだ（例: en, ja）。")
	rootCmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "乱数シードなのだ。0 なら毎回異なる結果になります。")
}

// preRunAppE は clibase の共通処理の後に呼ばれ、ロガーを設定するのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	setupLogger(cmd.ErrOrStderr(), clibase.Flags.Verbose)
	return nil
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// newManager は環境設定とフラグから Manager を組み立てるのだ。
// clibase の --config は env ファイルのパスとして扱います。
func newManager(cmd *cobra.Command, opts *config.GenerateOptions) (*workflow.Manager, error) {
	cfg, err := config.LoadConfig(clibase.Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.Options = *opts
	return workflow.New(cmd.Context(), cfg.Workflow())
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
// clibase.Execute はコンテキストを受け取らないので、ルートだけを借りてシグナルで止められるようにしています。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
