// Package testenv starts disposable database containers for integration
// tests and local development.
package testenv

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/localnerve/livros/internal/config"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage is used when DB_IMAGE is unset
const DefaultImage = "mariadb:11.4"

// Options describe the database to start. Empty fields are read from the
// environment (DB_IMAGE, DB_PORT, DB_DATABASE, DB_USER, DB_PASSWORD,
// DB_ROOT_PASSWORD) and then fall back to defaults.
type Options struct {
	Image        string
	Port         string
	Database     string
	User         string
	Password     string
	RootPassword string
	// HostPort pins the published port, otherwise docker picks one
	HostPort string
}

// MariaDB is a running database container
type MariaDB struct {
	Container testcontainers.Container
	Host      string
	Port      string
	Options   Options
}

func (o *Options) fill() {
	fill := func(dst *string, env, def string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
		if *dst == "" {
			*dst = def
		}
	}
	fill(&o.Image, "DB_IMAGE", DefaultImage)
	fill(&o.Port, "DB_PORT", "3306")
	fill(&o.Database, "DB_DATABASE", "livros")
	fill(&o.User, "DB_USER", "livros")
	fill(&o.Password, "DB_PASSWORD", "livros")
	fill(&o.RootPassword, "DB_ROOT_PASSWORD", "root")
}

// StartMariaDB runs a MariaDB container and waits until it accepts queries
func StartMariaDB(ctx context.Context, opts Options) (*MariaDB, error) {
	opts.fill()
	logger := zerolog.Ctx(ctx)

	if exists, err := ImageExists(ctx, opts.Image); err == nil && !exists {
		logger.Info().Str("image", opts.Image).Msg("image not present locally, pulling")
	}

	tcpPort, err := nat.NewPort("tcp", opts.Port)
	if err != nil {
		return nil, fmt.Errorf("db port: %w", err)
	}

	req := testcontainers.ContainerRequest{
		Image:        opts.Image,
		ExposedPorts: []string{string(tcpPort)},
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": opts.RootPassword,
			"MARIADB_DATABASE":      opts.Database,
			"MARIADB_USER":          opts.User,
			"MARIADB_PASSWORD":      opts.Password,
		},
		WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(90 * time.Second),
	}
	if opts.HostPort != "" {
		req.HostConfigModifier = func(hc *container.HostConfig) {
			hc.PortBindings = nat.PortMap{
				tcpPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: opts.HostPort}},
			}
		}
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start mariadb: %w", err)
	}

	m := &MariaDB{Container: ctr, Options: opts}
	if m.Host, err = ctr.Host(ctx); err != nil {
		_ = m.Terminate(ctx)
		return nil, err
	}
	mapped, err := ctr.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = m.Terminate(ctx)
		return nil, err
	}
	m.Port = mapped.Port()

	if err := m.waitReady(ctx); err != nil {
		_ = m.Terminate(ctx)
		return nil, err
	}

	logger.Info().Str("host", m.Host).Str("port", m.Port).Msg("mariadb ready")
	return m, nil
}

// Config returns service configuration pointing at the container
func (m *MariaDB) Config() *config.Config {
	return &config.Config{
		Port:               "0",
		CORSAllowOrigins:   "*",
		DBType:             "mariadb",
		DBHost:             m.Host,
		DBPort:             m.Port,
		DBDatabase:         m.Options.Database,
		DBUser:             m.Options.User,
		DBPassword:         m.Options.Password,
		DBConnectionLimit:  5,
		DBLogLevel:         "silent",
		JWTSecret:          "testenv-secret",
		TokenTTL:           time.Hour,
		ImportQueue:        "imports",
		ImportWorkers:      1,
		ImportMaxAttempts:  3,
		ImportPollInterval: 50 * time.Millisecond,
		MaxIndexDepth:      64,
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// Terminate stops and removes the container
func (m *MariaDB) Terminate(ctx context.Context) error {
	if m == nil || m.Container == nil {
		return nil
	}
	return m.Container.Terminate(ctx)
}

// waitReady pings with the application credentials; the port opens before
// the init scripts create the user
func (m *MariaDB) waitReady(ctx context.Context) error {
	mc := mysqldriver.NewConfig()
	mc.User = m.Options.User
	mc.Passwd = m.Options.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(m.Host, m.Port)
	mc.DBName = m.Options.Database

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("mariadb not ready after 30 seconds: %w", err)
}

// DockerAvailable reports whether a docker daemon answers
func DockerAvailable(ctx context.Context) bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

// ImageExists reports whether imageName is already in the local image store
func ImageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}
