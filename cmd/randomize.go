package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/domain"
	"github.com/shouni/go-character-kit/pkg/registry"
	"github.com/shouni/go-character-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

func newRandomizeCmd(opts *config.GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randomize [slot...]",
		Short: "スロットをランダムに選んでプロンプトを出力するのだ。",
		Long: `引数でスロット名を指定するとそのスロットだけ、--category でカテゴリ単位、
どちらも無ければ全スロットをランダム化するのだ。ロックされたスロットは変更しないのだよ。
--name / --file で既存の設定を土台にでき、--save で結果を保存できるのだ。`,
		Example: `  chara-prompt randomize
  chara-prompt randomize upper_body lower_body --color-mode palette --palette pastel
  chara-prompt randomize --category clothing --name sample --save sample`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, slot := range args {
				if !registry.Has(slot) {
					return fmt.Errorf("未知のスロットです: '%s'", slot)
				}
			}
			if opts.Category != "" && !registry.IsCategory(opts.Category) {
				return fmt.Errorf("未知のカテゴリです: '%s'（%v）", opts.Category, registry.Categories)
			}

			m, err := newManager(cmd, opts)
			if err != nil {
				return err
			}
			if opts.Palette != "" {
				if _, ok := m.Store().Palette(opts.Palette); !ok {
					return fmt.Errorf("未知のパレットです: '%s'", opts.Palette)
				}
			}

			cfg := m.NewConfig(opts.SaveAs)
			if opts.ConfigName != "" || opts.ConfigFile != "" {
				if cfg, err = loadTarget(cmd, m, opts); err != nil {
					return err
				}
			}
			if err := applyGenerationFlags(cmd, cfg, opts); err != nil {
				return err
			}

			results := m.Randomize(cfg, workflow.RandomizeRequest{Slots: args, Category: opts.Category})
			slog.Debug("ランダム化したのだ", "slots", len(results), "color_mode", cfg.ColorMode, "palette", cfg.PaletteID())

			if opts.SaveAs != "" {
				cfg.Name = opts.SaveAs
				if err := m.Configs().Save(cmd.Context(), cfg); err != nil {
					return err
				}
			}
			return printPrompt(cmd, m, cfg, opts)
		},
	}
	addTargetFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Category, "category", "", "ランダム化するカテゴリなのだ（appearance, body, expression, clothing, pose, background）。")
	cmd.Flags().StringVar(&opts.ColorMode, "color-mode", "", "衣装の色の決め方なのだ（none, palette, random）。")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "palette モードで使うパレットIDなのだ。")
	cmd.Flags().BoolVar(&opts.FullBody, "full-body", false, "全身モードにするのだ。")
	cmd.Flags().StringVar(&opts.SaveAs, "save", "", "結果をこの名前で保存するのだ。")
	cmd.Flags().BoolVar(&opts.Tokens, "tokens", false, "トークンを1行ずつ表示するのだ。")
	return cmd
}

// applyGenerationFlags は色と全身モードのフラグを設定に反映するのだ。
// --palette だけが指定された場合は palette モードとして扱います。
func applyGenerationFlags(cmd *cobra.Command, cfg *domain.GeneratorConfig, opts *config.GenerateOptions) error {
	if cmd.Flags().Changed("color-mode") {
		mode, err := domain.ParseColorMode(opts.ColorMode)
		if err != nil {
			return err
		}
		cfg.ColorMode = mode
	}
	if opts.Palette != "" {
		cfg.ActivePaletteID = domain.Ptr(opts.Palette)
		if !cmd.Flags().Changed("color-mode") {
			cfg.ColorMode = domain.ColorModePalette
		}
	}
	if cmd.Flags().Changed("full-body") {
		cfg.FullBodyMode = opts.FullBody
	}
	return nil
}
