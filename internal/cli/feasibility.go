package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/feasibility"
)

func init() {
	rootCmd.AddCommand(feasibilityCmd)
	feasibilityCmd.Flags().Int("time-limit", 0, "Solver wall-clock budget in seconds (default from config)")
	feasibilityCmd.Flags().Int("max-iterations", 0, "MIS deletion-loop budget (default from config)")
	feasibilityCmd.Flags().Bool("respect-dark", false, "Treat dark periods as a hard constraint")
	feasibilityCmd.Flags().StringSlice("block", nil, "Restrict the check to these block ids (repeatable)")
}

var feasibilityCmd = &cobra.Command{
	Use:   "feasibility SCHEDULE_ID",
	Short: "Check whether a schedule's blocks admit a non-overlapping assignment",
	Long: `Decide whether every selected block can be placed inside its own
visibility union without any two placements overlapping. On an infeasible
set, a minimal infeasible subset is isolated and printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeasibility,
}

func runFeasibility(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	orch, closeRepo, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	timeLimit, _ := cmd.Flags().GetInt("time-limit")
	if timeLimit <= 0 {
		timeLimit = cfg.Feasibility.DefaultTimeLimitS
	}
	maxIterations, _ := cmd.Flags().GetInt("max-iterations")
	if maxIterations <= 0 {
		maxIterations = cfg.Feasibility.DefaultMaxIterations
	}
	respectDark, _ := cmd.Flags().GetBool("respect-dark")
	blockIDs, _ := cmd.Flags().GetStringSlice("block")

	var filter domain.BlockFilter
	if len(blockIDs) > 0 {
		filter.BlockIDs = make(map[string]struct{}, len(blockIDs))
		for _, id := range blockIDs {
			filter.BlockIDs[id] = struct{}{}
		}
	}
	blocks, err := orch.Repo().GetBlocks(cmd.Context(), args[0], filter)
	if err != nil {
		return err
	}
	sch, err := orch.Repo().GetSchedule(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fblocks := make([]feasibility.Block, len(blocks))
	for i, b := range blocks {
		fblocks[i] = feasibility.Block{
			ID:                b.ID,
			Priority:          b.Priority,
			RequestedDuration: b.RequestedDurationSec,
			Visibility:        b.VisibilityPeriods,
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeLimit)*time.Second)
	defer cancel()

	result := feasibility.Check(ctx, fblocks, feasibility.Options{
		Seed:               cfg.Feasibility.Seed,
		MaxIterations:      maxIterations,
		RespectDarkPeriods: respectDark,
		DarkPeriods:        sch.DarkPeriods,
	})

	fmt.Printf("Status: %s\n", result.Status)
	switch result.Status {
	case feasibility.StatusFeasible:
		for _, a := range result.Assignments {
			fmt.Printf("  %s  [%.5f, %.5f]\n", a.BlockID, a.Start, a.Stop)
		}
	case feasibility.StatusInfeasible:
		minimality := "locally minimal"
		if result.Exact {
			minimality = "proven minimal"
		}
		fmt.Printf("Minimal infeasible subset (%s, %d block(s)):\n", minimality, len(result.MIS))
		for _, id := range result.MIS {
			fmt.Printf("  %s\n", id)
		}
		for _, id := range result.Infeasible {
			fmt.Printf("  %s  (no visibility window fits the requested duration)\n", id)
		}
	case feasibility.StatusUnknown:
		fmt.Println("Time limit reached before a conclusive answer; partial diagnostic:")
		for _, id := range result.MIS {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
