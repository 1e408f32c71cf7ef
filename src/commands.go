package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"memo-registry/src/app"
	"memo-registry/src/config"
	"memo-registry/src/domain"
	"memo-registry/src/stats"
	"memo-registry/src/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cliLogger writes warnings to stderr so stdout stays machine readable
func cliLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func newStatsCmd(cfg func() *config.Config) *cobra.Command {
	var (
		bucket   string
		criteria domain.FilterCriteria
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "部署別・期間別の件数を表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := stats.ParseBucketKind(bucket)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg(), cliLogger())
			if err != nil {
				return err
			}
			defer a.Close()

			tl, err := a.Registry.Timeline(kind, criteria)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"summary":     a.Registry.Dashboard(),
				"departments": a.Registry.DepartmentStats(criteria),
				"timeline":    tl,
			})
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", string(stats.BucketMonth), "day, week, month or year")
	cmd.Flags().StringVar(&criteria.Subject, "subject", "", "件名（部分一致）")
	cmd.Flags().StringVar(&criteria.Teacher, "teacher", "", "担当者（完全一致）")
	cmd.Flags().StringVar(&criteria.Department, "department", "", "部署（完全一致）")
	cmd.Flags().StringVar(&criteria.From, "from", "", "開始日 YYYY-MM-DD")
	cmd.Flags().StringVar(&criteria.To, "to", "", "終了日 YYYY-MM-DD")
	return cmd
}

func newDepartmentsCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "departments",
		Short: "部署一覧を表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), cfg(), cliLogger())
			if err != nil {
				return err
			}
			defer a.Close()

			for _, d := range a.Registry.Departments() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "部署を追加",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), cfg(), cliLogger())
			if err != nil {
				return err
			}
			defer a.Close()

			name := validator.NewCustomValidator().NormalizeText(args[0])
			if name == "" {
				return fmt.Errorf("部署名を入力してください")
			}
			added, warning, err := a.Registry.AddDepartment(cmd.Context(), name)
			if err != nil {
				return err
			}
			if warning != "" {
				return fmt.Errorf("%s", warning)
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s は既に登録されています\n", name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s を追加しました\n", name)
			return nil
		},
	})
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
