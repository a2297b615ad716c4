/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run full syncs on a cron schedule",
	Long: `Runs the full Confluence sync on the configured cron schedule. A tick
is skipped when the previous run is still in progress.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		orch, err := buildSyncPipeline(cfg)
		if err != nil {
			log.Fatalf("Failed to build sync pipeline: %v", err)
		}
		repo := buildSyncRepo(context.Background(), cfg)

		loc, err := time.LoadLocation(cfg.Sync.Timezone)
		if err != nil {
			log.Fatalf("Invalid sync timezone %q: %v", cfg.Sync.Timezone, err)
		}

		var running atomic.Bool
		c := cron.New(cron.WithLocation(loc))
		_, err = c.AddFunc(cfg.Sync.Cron, func() {
			if !running.CompareAndSwap(false, true) {
				log.Println("Previous sync still running, skipping this run")
				return
			}
			defer running.Store(false)

			ctx := context.Background()
			stats := orch.RunFullSync(ctx)
			persistSyncStats(ctx, repo, stats)
		})
		if err != nil {
			log.Fatalf("Invalid sync cron expression %q: %v", cfg.Sync.Cron, err)
		}

		log.Printf("Scheduling sync with cron %q in timezone %s", cfg.Sync.Cron, loc)
		c.Run()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
