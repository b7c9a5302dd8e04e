package cmd

import (
	"fmt"

	"github.com/shouni/go-character-kit/internal/config"
	"github.com/shouni/go-character-kit/pkg/domain"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *config.GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "保存済みの設定を管理するのだ。",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "保存済みの設定名を表示するのだ。",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newManager(cmd, opts)
				if err != nil {
					return err
				}
				names, err := m.Configs().List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "設定の内容をJSONで表示するのだ。",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newManager(cmd, opts)
				if err != nil {
					return err
				}
				cfg, err := m.Configs().Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := domain.MarshalConfig(cfg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			},
		},
		&cobra.Command{
			Use:   "new <name>",
			Short: "全スロットが既定状態の設定を作成するのだ。",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newManager(cmd, opts)
				if err != nil {
					return err
				}
				if err := m.Configs().Save(cmd.Context(), m.NewConfig(args[0])); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
				return err
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "設定を削除するのだ。",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newManager(cmd, opts)
				if err != nil {
					return err
				}
				if err := m.Configs().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			},
		},
	)
	return cmd
}
