package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhishekbhowal06/email-automation/internal/config"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample leads and templates",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	leadRepo := repository.NewLeadRepository(database.DB)
	templateRepo := repository.NewTemplateRepository(database.DB)

	addedLeads := 0
	for _, lead := range models.SampleLeads() {
		err := leadRepo.Create(&lead)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return err
		}
		addedLeads++
	}

	// Skip template seeding when any templates already exist
	count, err := templateRepo.Count()
	if err != nil {
		return err
	}
	addedTemplates := 0
	if count == 0 {
		for _, tpl := range models.SampleTemplates() {
			if err := templateRepo.Create(&tpl); err != nil {
				return err
			}
			addedTemplates++
		}
	}

	fmt.Printf("Seeded %d leads and %d templates\n", addedLeads, addedTemplates)
	return nil
}
