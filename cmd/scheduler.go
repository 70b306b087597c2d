package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/performance-evaluation/internal/report"
	report_repo "github.com/frahmantamala/performance-evaluation/internal/report/postgres"
	"github.com/frahmantamala/performance-evaluation/pkg/logger"
)

// schedulerCmd runs the recurring report jobs without the HTTP server, for
// deployments that keep the API and the cron workload in separate processes.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the report scheduler standalone",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		lg := logger.L()

		db, gormDB, err := initDB(cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to init db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		service := report.NewService(report_repo.NewRepository(gormDB), report.NewGenerator(db), lg)
		scheduler := report.NewScheduler(service, cfg.Scheduler.SystemUserID, lg)

		if err := scheduler.Start(); err != nil {
			lg.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		lg.Info("received signal, stopping scheduler", "signal", sig)
		scheduler.Stop()
	},
}
