package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhishekbhowal06/email-automation/internal/config"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Import and export leads",
}

var leadsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import leads from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadsImport,
}

var leadsExportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export all leads to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadsExport,
}

func init() {
	leadsCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	leadsCmd.AddCommand(leadsImportCmd)
	leadsCmd.AddCommand(leadsExportCmd)
}

func openLeadRepo() (*repository.LeadRepository, func() error, error) {
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
	return repository.NewLeadRepository(database.DB), database.Close, nil
}

func runLeadsImport(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openLeadRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := leadio.ImportLeads(f, repo)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d leads (%d skipped)\n", result.Imported, result.Skipped)
	return nil
}

func runLeadsExport(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openLeadRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	leads, err := repo.List(models.LeadFilter{})
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := leadio.ExportLeads(f, leads); err != nil {
		return err
	}

	fmt.Printf("Exported %d leads to %s\n", len(leads), args[0])
	return nil
}
