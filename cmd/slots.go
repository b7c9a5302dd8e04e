package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/registry"

	"github.com/spf13/cobra"
)

func newSlotsCmd(opts *config.GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "スロットの一覧と選択肢を表示するのだ。",
		Long: `引数なしでは全スロットの定義と選択肢の数を表示するのだ。
--slot を指定するとそのスロットの選択肢を一覧にするのだよ。`,
		Example: "  chara-prompt slots\n  chara-prompt slots --slot upper_body --lang ja",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd, opts)
			if err != nil {
				return err
			}
			store := m.Store()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if opts.Slot != "" {
				if !registry.Has(opts.Slot) {
					return fmt.Errorf("未知のスロットです: '%s'", opts.Slot)
				}
				coversLegs := store.CoversLegsByID()
				usesHands := store.UsesHandsByID()
				fmt.Fprintln(w, "ID\tNAME\tLABEL\tCLASS\tCOVERS_LEGS\tUSES_HANDS")
				for _, item := range store.Options(opts.Slot) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.DisplayName(opts.Language), orDash(item.ClassKey()),
						flagColumn(opts.Slot == registry.LowerBody, coversLegs[item.ID]),
						flagColumn(opts.Slot == registry.Pose, usesHands[item.ID]))
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "SLOT\tCATEGORY\tCATALOG\tOPTIONS\tCOLOR")
			for _, def := range registry.Definitions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", def.Name, def.Category, def.Catalog, len(store.Options(def.Name)), def.HasColor)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, missing := range store.Missing() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", missing)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Slot, "slot", "", "選択肢を表示するスロット名なのだ。")
	return cmd
}

// flagColumn は対象スロットでだけ真偽値を表示し、それ以外は "-" にするのだ。
func flagColumn(applies, value bool) string {
	if !applies {
		return "-"
	}
	return strconv.FormatBool(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newPalettesCmd(opts *config.GenerateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "カラーパレットと個別色を表示するのだ。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd, opts)
			if err != nil {
				return err
			}
			store := m.Store()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLORS")
			for _, p := range store.Palettes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.DisplayName(opts.Language), joinColors(store.LocalizeColor, p.Colors, opts.Language))
			}
			fmt.Fprintf(w, "-\t(individual)\t%s\n", joinColors(store.LocalizeColor, store.IndividualColors(), opts.Language))
			return w.Flush()
		},
	}
}

func joinColors(localize func(color, lang string) string, colors []string, lang string) string {
	labels := make([]string, 0, len(colors))
	for _, c := range colors {
		labels = append(labels, localize(c, lang))
	}
	return strings.Join(labels, ", ")
}
