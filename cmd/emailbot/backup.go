package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhishekbhowal06/email-automation/internal/config"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

var backupCmd = &cobra.Command{
	Use:   "backup <file.json>",
	Short: "Write a full backup of all data and settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file.json>",
	Short: "Restore a backup, replacing all current data",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	backupCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	restoreCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

func openBackupService() (*leadio.BackupService, func() error, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, err
	}

	svc := leadio.NewBackupService(
		database.DB,
		repository.NewLeadRepository(database.DB),
		repository.NewTemplateRepository(database.DB),
		repository.NewCampaignRepository(database.DB),
		repository.NewEmailRepository(database.DB),
		repository.NewLogRepository(database.DB),
		repository.NewSettingsRepository(database.DB),
	)
	return svc, database.Close, nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openBackupService()
	if err != nil {
		return err
	}
	defer closeDB()

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := svc.Create(f); err != nil {
		return err
	}

	fmt.Printf("Backup written to %s\n", args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openBackupService()
	if err != nil {
		return err
	}
	defer closeDB()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := svc.Restore(f); err != nil {
		return err
	}

	fmt.Printf("Backup restored from %s\n", args[0])
	return nil
}
