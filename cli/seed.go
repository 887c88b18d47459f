package cli

import (
	"fmt"
	"log"

	"github.com/mukhammadalimk/natours/configs"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func seedCmd() *cobra.Command {
	var (
		file   string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import or delete development data",
		Long: `Import tours, users and reviews from a YAML file, or delete them all.

Examples:
  natours seed --file dev-data/data.yaml
  natours seed --delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !remove && file == "" {
				return fmt.Errorf("specify --file or --delete")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := configs.ConnectionDB(cfg)
			if err != nil {
				return err
			}
			if err := configs.SetupDatabase(db); err != nil {
				return err
			}
			if remove {
				if err := configs.DeleteDevData(db); err != nil {
					return err
				}
				log.Println("🗑️ Data successfully deleted!")
				return nil
			}
			return importFile(db, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with users, tours and reviews")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete all tours, users, reviews and bookings")
	return cmd
}

func importFile(db *gorm.DB, file string) error {
	data, err := configs.LoadDevData(file)
	if err != nil {
		return err
	}
	if err := configs.ImportDevData(db, data); err != nil {
		return err
	}

	var ids []uint
	if err := db.Table("tours").Pluck("id", &ids).Error; err != nil {
		return err
	}
	reviews := services.NewReviewService(db,
		repository.NewReviewRepository(db), repository.NewTourRepository(db), nil)
	if err := reviews.RecalcTours(ids); err != nil {
		return fmt.Errorf("recompute ratings: %w", err)
	}
	log.Printf("✅ Data successfully loaded! (%d users, %d tours, %d reviews)",
		len(data.Users), len(data.Tours), len(data.Reviews))
	return nil
}
