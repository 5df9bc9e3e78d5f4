package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/parser"
	"github.com/obscura-observatory/scheduler-analytics/internal/service"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(schedulesCmd)
	schedulesCmd.AddCommand(schedulesListCmd)
	schedulesCmd.AddCommand(schedulesRemoveCmd)

	ingestCmd.Flags().StringP("dark", "d", "", "Path to the dark-periods document (required)")
	ingestCmd.Flags().StringP("possible", "p", "", "Path to a pre-computed possible-periods document")
	ingestCmd.Flags().Bool("no-analytics", false, "Store raw entities only, skip analytics population")
	ingestCmd.Flags().Bool("skip-time-bins", false, "Defer the visibility-bin grid (fast mode)")
	ingestCmd.MarkFlagRequired("dark")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest SCHEDULE_FILE",
	Short: "Ingest a schedule document",
	Long: `Parse, validate, and store a schedule document, then populate its
derived analytics. Re-ingesting identical content is a no-op that returns
the existing schedule id.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	orch, closeRepo, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	darkPath, _ := cmd.Flags().GetString("dark")
	possiblePath, _ := cmd.Flags().GetString("possible")
	noAnalytics, _ := cmd.Flags().GetBool("no-analytics")
	skipTimeBins, _ := cmd.Flags().GetBool("skip-time-bins")
	if !cmd.Flags().Changed("skip-time-bins") {
		skipTimeBins = cfg.Analytics.SkipTimeBinsDefault
	}

	result, err := orch.StoreSchedule(cmd.Context(), parser.Input{
		SchedulePath:        args[0],
		DarkPath:            darkPath,
		PossiblePeriodsPath: possiblePath,
	}, service.StoreOptions{
		PopulateAnalytics: !noAnalytics,
		SkipTimeBins:      skipTimeBins,
	})
	if err != nil {
		return err
	}

	if result.Existed {
		fmt.Printf("Schedule already stored: %s\n", result.ScheduleID)
		return nil
	}
	fmt.Printf("Stored schedule %s (job %s)\n", result.ScheduleID, result.JobID)

	issues, err := orch.Repo().FetchValidation(cmd.Context(), result.ScheduleID)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		byCriticality := make(map[domain.Criticality]int)
		for _, is := range issues {
			byCriticality[is.Criticality]++
		}
		fmt.Printf("Validation: %d issue(s)", len(issues))
		for _, c := range []domain.Criticality{
			domain.CriticalityCritical, domain.CriticalityHigh,
			domain.CriticalityMedium, domain.CriticalityLow,
		} {
			if n := byCriticality[c]; n > 0 {
				fmt.Printf(" %s=%d", c, n)
			}
		}
		fmt.Println()
	}
	return nil
}

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Manage stored schedules",
}

var schedulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		orch, closeRepo, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		schedules, err := orch.Repo().ListSchedules(cmd.Context())
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			fmt.Println("No schedules stored.")
			return nil
		}
		for _, sch := range schedules {
			fmt.Printf("%s  %-30s  %s  %s\n",
				sch.ID, sch.Name,
				sch.UploadTimestamp.Format("2006-01-02 15:04:05"),
				sch.Checksum[:12])
		}
		return nil
	},
}

var schedulesRemoveCmd = &cobra.Command{
	Use:   "rm SCHEDULE_ID",
	Short: "Delete a schedule and all its derived rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		orch, closeRepo, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		if err := orch.Repo().DeleteSchedule(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted schedule %s\n", args[0])
		return nil
	},
}
