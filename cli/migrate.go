package cli

import (
	"log"

	"github.com/mukhammadalimk/natours/configs"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			log.Println("✅ Database migrated")
			return nil
		},
	}
}
