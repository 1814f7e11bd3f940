package cmd

import (
	"errors"

	"github.com/atelierhq/atelier/config"
	"github.com/atelierhq/atelier/database"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var createAdminCmdFlags struct {
	Username string
	Password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the administrative account",
	Long: `Create the single administrative account used to log into the back office.
The account is only ever created through this command, never through the web surface.`,
	Run: createAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&createAdminCmdFlags.Username, "username", "admin", "Username of the administrative account")
	createAdminCmd.Flags().StringVar(&createAdminCmdFlags.Password, "password", "admin123", "Initial password of the administrative account")

	rootCmd.AddCommand(createAdminCmd)
}

func createAdmin(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := cmd.Context()

	if _, err := db.GetUserByUsername(ctx, createAdminCmdFlags.Username); err == nil {
		log.Info("admin user already exists", "username", createAdminCmdFlags.Username)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up admin user: %v", err)
	}

	if _, err := db.CreateUser(ctx, createAdminCmdFlags.Username, createAdminCmdFlags.Password); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	log.Info("admin user created", "username", createAdminCmdFlags.Username)
	if createAdminCmdFlags.Password == "admin123" {
		log.Warn("the admin account uses the default placeholder password, recreate it with --password before deploying")
	}
}
