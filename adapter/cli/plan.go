package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/vita/internal/scheduling/application/services"
	"github.com/felixgeelhaar/vita/internal/scheduling/application/subscribers"
	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
	"github.com/felixgeelhaar/vita/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/vita/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/vita/pkg/config"
)

var (
	planInputPath string
	planStartDate string
	planDays      int
	planOutPath   string
	planSave      bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run the scheduling engine over a plan input file",
	Long: `Run one scheduling pass: load activities and resources from a JSON
input file, place every occurrence over the horizon, and print the booking
statistics and the failure report.

Examples:
  vita plan --input plan.json --start 2025-01-06 --days 90
  vita plan --input plan.json --start 2025-01-06 --days 14 --out schedule.json
  vita plan --input plan.json --start 2025-01-06 --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		days := planDays
		if days == 0 {
			days = cfg.HorizonDays
		}

		startDate, err := time.Parse(domain.DateFormat, planStartDate)
		if err != nil {
			return fmt.Errorf("parse start date %q: %w", planStartDate, err)
		}

		input, err := persistence.LoadPlanInput(planInputPath)
		if err != nil {
			return err
		}

		scheduler, err := services.NewScheduler(services.SchedulerInput{
			Activities:    input.Activities,
			Specialists:   input.Specialists,
			Equipment:     input.Equipment,
			TravelPeriods: input.TravelPeriods,
			StartDate:     startDate,
			DurationDays:  days,
			BackupLookup:  input.BackupActivities,
		}, services.DefaultSchedulerConfig(), logger)
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}

		plan, err := scheduler.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("run scheduler: %w", err)
		}

		// Surface fallback activations and dropped occurrences.
		bus := eventbus.NewInProcessEventBus(logger)
		bus.RegisterConsumer(subscribers.NewResilienceSubscriber(logger))
		if err := bus.PublishAll(cmd.Context(), plan); err != nil {
			logger.Warn("event dispatch failed", "error", err)
		}

		printStatistics(plan.Statistics())
		printFailureReport(plan.FailureReport())

		if planOutPath != "" {
			f, err := os.Create(planOutPath)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			if err := persistence.EncodeSlots(f, plan.BookedSlots()); err != nil {
				return err
			}
			fmt.Printf("\nSchedule written to %s\n", planOutPath)
		}

		if planSave {
			if err := savePlan(cmd, cfg, plan); err != nil {
				return err
			}
			fmt.Println("\nSchedule saved.")
		}

		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planInputPath, "input", "i", "", "JSON plan input file (required)")
	planCmd.Flags().StringVarP(&planStartDate, "start", "s", "", "horizon start date, YYYY-MM-DD (required)")
	planCmd.Flags().IntVarP(&planDays, "days", "d", 0, "horizon length in days (default from config)")
	planCmd.Flags().StringVarP(&planOutPath, "out", "o", "", "write the booked slots to a JSON file")
	planCmd.Flags().BoolVar(&planSave, "save", false, "persist the booked slots to the plan store")
	_ = planCmd.MarkFlagRequired("input")
	_ = planCmd.MarkFlagRequired("start")
}

func savePlan(cmd *cobra.Command, cfg *config.Config, plan *domain.Plan) error {
	ctx := cmd.Context()

	if cfg.DatabaseDriver == "postgres" {
		repo, closePool, err := openPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer closePool()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		return repo.Save(ctx, plan)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := persistence.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := persistence.NewSQLitePlanRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.Save(ctx, plan)
}

func printStatistics(stats domain.Statistics) {
	fmt.Println("Schedule statistics")
	fmt.Println("-------------------")
	fmt.Printf("Total slots:      %d\n", stats.TotalSlots)
	fmt.Printf("Primary slots:    %d\n", stats.PrimarySlots)
	fmt.Printf("Backup slots:     %d\n", stats.BackupSlots)
	fmt.Printf("Resilience rate:  %.1f%%\n", stats.ResilienceRate)
	fmt.Printf("Unique activities: %d\n", stats.UniqueActivities)
	fmt.Printf("Overall success:  %.1f%%\n", stats.OverallSuccessRate)

	if stats.TotalSlots > 0 {
		fmt.Printf("Date range:       %s to %s\n", domain.DateKey(stats.RangeStart), domain.DateKey(stats.RangeEnd))
		fmt.Printf("Busiest day:      %s (%d slots)\n", domain.DateKey(stats.BusiestDay), stats.BusiestDayCount)
	}

	priorities := make([]int, 0, len(stats.PriorityBreakdown))
	for p := range stats.PriorityBreakdown {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)
	for _, p := range priorities {
		entry := stats.PriorityBreakdown[p]
		fmt.Printf("  P%d: %.1f%% (%d/%d)\n", p, entry.Rate, entry.Success, entry.Total)
	}
}

func printFailureReport(report []domain.FailureEntry) {
	if len(report) == 0 {
		fmt.Println("\nNo terminal failures.")
		return
	}

	fmt.Printf("\nFailed activities (%d)\n", len(report))
	fmt.Println("----------------------")
	for _, entry := range report {
		fmt.Printf("P%d %s (%s): %d attempts, mostly %s — %s\n",
			entry.Priority, entry.ActivityName, entry.ActivityID,
			entry.TotalAttempts, entry.PrimaryCause, entry.LatestReason)
	}
}
