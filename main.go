package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/customeros/recipestack/config"
	"github.com/customeros/recipestack/internal/database"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/server"
	"github.com/customeros/recipestack/services"
)

func main() {
	app := &cli.App{
		Name:  "recipestack",
		Usage: "ingredients and recipes over GraphQL",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: migrate,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: serve,
			},
			{
				Name:  "create-user",
				Usage: "Create a user that can obtain API tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"RECIPESTACK_USER_PASSWORD"}},
					&cli.StringFlag{Name: "email"},
				},
				Action: createUser,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, logger.Logger, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, nil, cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	recipestackDB, err := database.InitRecipestackDatabase(cfg.RecipestackDatabaseConfig)
	if err != nil {
		return nil, nil, nil, cli.Exit("Recipestack database initialization failed: "+err.Error(), 1)
	}

	return cfg, appLogger, recipestackDB, nil
}

func migrate(c *cli.Context) error {
	cfg, appLogger, recipestackDB, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	if err := repository.MigrateRecipestackDB(cfg.RecipestackDatabaseConfig, recipestackDB); err != nil {
		return cli.Exit("Database migration failed: "+err.Error(), 1)
	}
	appLogger.Info("Database migration completed successfully")
	return nil
}

func serve(c *cli.Context) error {
	cfg, appLogger, recipestackDB, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	appLogger.Info("Recipestack starting up...")

	srv, err := server.NewServer(c.Context, cfg, recipestackDB, appLogger)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	if err := srv.Run(); err != nil {
		return cli.Exit("Server startup failed: "+err.Error(), 1)
	}

	appLogger.Info("Shutdown complete")
	return nil
}

func createUser(c *cli.Context) error {
	cfg, appLogger, recipestackDB, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx := context.Background()
	svcs, err := services.InitServices(ctx, cfg, appLogger, repository.InitRepositories(recipestackDB))
	if err != nil {
		return cli.Exit("Service initialization failed: "+err.Error(), 1)
	}
	defer svcs.Close()

	user, err := svcs.AuthService.CreateUser(ctx, c.String("username"), c.String("password"), c.String("email"))
	if err != nil {
		return cli.Exit("Failed to create user: "+err.Error(), 1)
	}

	appLogger.Infof("Created user %s (%s)", user.Username, user.ID)
	return nil
}
