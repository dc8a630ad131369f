// Command bestxi computes lineups, rankings and formation checks offline
// from a YAML roster fixture.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/bestxi/internal/app"
	"github.com/okian/bestxi/internal/domain/lineup"
	"github.com/okian/bestxi/internal/domain/model"
	"github.com/okian/bestxi/internal/fixture"
	"github.com/okian/bestxi/pkg/logger"
)

// errIllegal is returned by validate for formations that fail a rule.
var errIllegal = errors.New("illegal formation")

func main() {
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithLevel(slog.LevelWarn)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "bestxi",
		Short:        "Composite scoring and best-XI selection",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newSelectCmd(), newRankCmd(), newValidateCmd(), newParseCmd())
	return root
}

// loadRoster reads path, or the embedded reference squad when path is empty.
func loadRoster(path string) (*fixture.Roster, error) {
	if path == "" {
		return fixture.Reference(), nil
	}
	return fixture.Load(path)
}

func newSelectCmd() *cobra.Command {
	var (
		path      string
		formation string
		tiebreak  string
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the best XI for a roster fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := loadRoster(path)
			if err != nil {
				return err
			}
			if tiebreak != "" {
				roster.TiebreakStat = tiebreak
			}
			res, err := fixture.Run(cmd.Context(), roster, formation,
				service.WithLogger(logger.Named("bestxi")),
				service.WithRequireLegal(strict),
			)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "roster fixture (YAML); defaults to the reference squad")
	cmd.Flags().StringVarP(&formation, "formation", "F", "", "formation shorthand, e.g. 4-3-3 or 4-2-3-1")
	cmd.Flags().StringVar(&tiebreak, "tiebreak", "", "raw statistic used to break composite ties")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject formations that fail validation")
	return cmd
}

func newRankCmd() *cobra.Command {
	var (
		path  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a roster fixture by composite score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := loadRoster(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc := service.New(service.WithLogger(logger.Named("bestxi")))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			if err := fixture.Apply(ctx, svc, roster); err != nil {
				return err
			}
			ranking, err := svc.Rankings(ctx, roster.Team, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ranking)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "roster fixture (YAML); defaults to the reference squad")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <formation>",
		Short: "Check a formation against the competitive rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := lineup.ParseFormation(args[0])
			if err != nil {
				return err
			}
			res := lineup.Validate(f)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("%w: %s", errIllegal, res.Reason)
			}
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <formation>",
		Short: "Expand formation shorthand into per-position counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := lineup.ParseFormation(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Formation model.Formation `json:"formation"`
				Shorthand string          `json:"shorthand"`
			}{f, lineup.Shorthand(f)})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
