package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/logging"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/testenv"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var hostPort string
	flag.StringVar(&hostPort, "p", "", "publish the database on this host port")
	var seedEmail, seedPassword string
	flag.StringVar(&seedEmail, "seed-email", "", "create a publisher with this email after migrating")
	flag.StringVar(&seedPassword, "seed-password", "password", "password for the seeded publisher")
	flag.Parse()

	usage := `
Start a MariaDB container for local livros development, migrate it and keep
it running until interrupted.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-p HOST_PORT] [-seed-email EMAIL [-seed-password PASSWORD]]

ENV_FILE_PATH: path to a .env file providing DB_IMAGE, DB_DATABASE, DB_USER, DB_PASSWORD, DB_ROOT_PASSWORD

example
  testcontainers -f .env -p 3306 -seed-email ana@example.com
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	logger := logging.Setup(os.Getenv("LOG_LEVEL"), "console")

	if envFilename != "" {
		logger.Info().Str("file", envFilename).Msg("loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			logger.Fatal().Err(err).Msg("failed to load environment variables")
		}
	} else {
		logger.Info().Msg("no environment file specified, using current environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	ctx = logger.WithContext(ctx)

	if !testenv.DockerAvailable(ctx) {
		logger.Fatal().Msg("docker daemon is not reachable")
	}

	mariadb, err := testenv.StartMariaDB(ctx, testenv.Options{HostPort: hostPort})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start mariadb")
	}
	defer func() {
		logger.Info().Msg("terminating mariadb container")
		if err := mariadb.Terminate(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to terminate mariadb")
		}
	}()

	cfg := mariadb.Config()
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect")
		return
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Error().Err(err).Msg("failed to migrate")
		return
	}

	if seedEmail != "" {
		user, err := services.CreateUser(ctx, db, "Seed Publisher", seedEmail, seedPassword)
		if err != nil {
			logger.Error().Err(err).Msg("failed to seed publisher")
			return
		}
		logger.Info().Uint64("user_id", user.ID).Str("email", user.Email).Msg("publisher seeded")
	}

	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)

	<-ctx.Done()
	logger.Info().Msg("received signal, shutting down")
}
