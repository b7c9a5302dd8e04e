package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

func newRenderCmd(opts *config.GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "保存済みの設定からプロンプトを出力するのだ。",
		Long: `--name で保存済みの設定名、--file で設定ファイルのパス（'-' で標準入力）を指定するのだ。
設定の値は変更しないので、全身モードで隠れた上下の衣装もそのまま残るのだよ。`,
		Example: "  chara-prompt render --name sample --lang ja\n  chara-prompt render --file my.json --full-body",
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
			if cmd.Flags().Changed("full-body") {
				cfg.FullBodyMode = opts.FullBody
			}
			return printPrompt(cmd, m, cfg, opts)
		},
	}
	addTargetFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.FullBody, "full-body", false, "全身モードを上書きするのだ。")
	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "トークンを1行ずつ表示するのだ。")
	return cmd
}

func addTargetFlags(cmd *cobra.Command, opts *config.GenerateOptions) {
	cmd.Flags().StringVarP(&opts.ConfigName, "name", "n", "", "保存済みの設定名なのだ。")
	cmd.Flags().StringVarP(&opts.ConfigFile, "file", "f", "", "設定ファイルのパスなのだ（'-' で標準入力）。")
	cmd.MarkFlagsMutuallyExclusive("name", "file")
}

// loadTarget は --name か --file で指定された設定を読み込むのだ。
// --file は設定ストアと同じリーダーで読みます。
func loadTarget(cmd *cobra.Command, m *workflow.Manager, opts *config.GenerateOptions) (*domain.GeneratorConfig, error) {
	switch {
	case opts.ConfigFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("標準入力の読み込みに失敗しました: %w", err)
		}
		cfg, err := domain.ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return cfg, nil
	case opts.ConfigFile != "":
		return m.Configs().Open(cmd.Context(), opts.ConfigFile)
	case opts.ConfigName != "":
		return m.Configs().Load(cmd.Context(), opts.ConfigName)
	default:
		return nil, errors.New("設定（--name または --file）を指定してほしいのだ")
	}
}

func printPrompt(cmd *cobra.Command, m *workflow.Manager, cfg *domain.GeneratorConfig, opts *config.GenerateOptions) error {
	if !opts.Tokens {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), m.Render(cfg, opts.Language))
		return err
	}
	for _, token := range m.Tokens(cfg, opts.Language) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), token); err != nil {
			return err
		}
	}
	return nil
}
