package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a standalone job worker",
	Long: `Claims and executes queued jobs without serving HTTP. The role flag
restricts the claimed job types, so one process can handle delivery and
media while another handles crew dispatch.`,
	Run: workerServer,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func workerServer(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := newWorkerPool()
	pool.Start(ctx)
	logrus.Infof("[WORKER] standalone worker running: role=%s", cfg.Worker.Role)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logrus.Info("[WORKER] Termination signal received, shutting down gracefully...")
	cancel()
	pool.Stop()
	StopApp()
}
