package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create missing tables and upsert the administrator account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := mustApp(ctx)
		defer app.Close()

		if err := app.Repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		sec := app.Config.Security
		if err := app.Repo.SeedAdmin(ctx, sec.AdminLogin, sec.AdminPassword, sec.BCryptCost); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Println("Seeded admin user:", sec.AdminLogin)
	},
}
