package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moveline/leadgate/infrastructure/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Run:   runMigrations,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// runMigrations re-applies the schema. initApp already migrates on start;
// this command exists for deploy pipelines that migrate before rollout.
func runMigrations(_ *cobra.Command, _ []string) {
	if err := storage.AutoMigrate(db); err != nil {
		logrus.Fatalf("[MIGRATION] failed: %v", err)
	}
	logrus.Info("[MIGRATION] schema is up to date")
	StopApp()
}
