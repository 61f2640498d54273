package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crownwell/vnscreener/internal/scheduler"
	"github.com/crownwell/vnscreener/internal/scheduler/jobs"
)

// schedulerCmd manages the job scheduler.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler",
	Long: `Start the scheduler daemon or run a registered job once.

Registered jobs:
  daily_scan        - weekdays 16:00, scan every exchange and persist
  universe_refresh  - Sunday 20:00, re-pull the exchange listings

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler run daily_scan`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runSchedulerStart,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run a registered job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)

	if err := s.AddJob(jobs.NewDailyScanJob(a.engine, a.universe, a.repo, a.log)); err != nil {
		return nil, err
	}
	if err := s.AddJob(jobs.NewUniverseRefreshJob(a.universe, a.log)); err != nil {
		return nil, err
	}

	return s, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	s.Start()
	fmt.Println("Scheduler running, Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	name := args[0]
	fmt.Printf("Running job %s...\n", name)
	if err := s.RunJob(name); err != nil {
		return err
	}

	// RunJob is asynchronous; wait for the run to land in history.
	for {
		time.Sleep(200 * time.Millisecond)

		h, err := s.History(name)
		if err != nil {
			return err
		}
		if len(h.Results) > 0 {
			last := h.Results[len(h.Results)-1]
			if last.Success {
				fmt.Printf("Job %s completed in %s\n", name, last.Duration)
				return nil
			}
			return fmt.Errorf("job %s failed: %s", name, last.Error)
		}
	}
}
