package cmd

import (
	"log/slog"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/catalog"

	"github.com/spf13/cobra"
)

func newWatchCmd(opts *config.GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "カタログを監視して、変更のたびに設定のプロンプトを出力し直すのだ。",
		Long: `--data-dir（または CHARA_DATA_DIR）のカタログファイルを監視するのだ。
カタログが書き換わると新しいカタログで設定を描画し直すのだよ。Ctrl+C で終了します。`,
		Example: "  chara-prompt watch --data-dir ./data --name sample",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd, opts)
			if err != nil {
				return err
			}
			cfg, err := loadTarget(cmd, m, opts)
			if err != nil {
				return err
			}
			if err := printPrompt(cmd, m, cfg, opts); err != nil {
				return err
			}

			return m.Watch(cmd.Context(), func(store *catalog.Store) {
				slog.Info("カタログを再読み込みしたのだ", "loaded_at", store.LoadedAt())
				if err := printPrompt(cmd, m, cfg, opts); err != nil {
					slog.Error("プロンプトの出力に失敗したのだ", "error", err)
				}
			})
		},
	}
	addTargetFlags(cmd, opts)
	return cmd
}
