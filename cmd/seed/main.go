package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"clientdesk/internal/config"
	"clientdesk/internal/db"
	"clientdesk/internal/logger"
	"clientdesk/internal/repository"
	"clientdesk/internal/service"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
	nameFlag     = "name"
	countFlag    = "count"
)

var adminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "admin@mail.com",
		Usage: "Email of the administrator",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "password",
		Usage: "Password of the administrator",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "Admin",
		Usage: "Display name of the administrator",
	},
}

var clientFlags = map[string]cobraflags.Flag{
	countFlag: &cobraflags.StringFlag{
		Name:  countFlag,
		Value: "10",
		Usage: "Number of clients to create",
	},
}

func main() {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Seed the clientdesk database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAdminCommand(), newClientsCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the administrator or promote an existing user to admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, log, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			user, created, err := svc.EnsureAdmin(cmd.Context(), service.AdminInput{
				Name:     adminFlags[nameFlag].GetString(),
				Email:    adminFlags[emailFlag].GetString(),
				Password: adminFlags[passwordFlag].GetString(),
			})
			if err != nil {
				return err
			}
			log.Info().Uint("user_id", user.ID).Str("email", user.Email).Bool("created", created).Msg("admin ready")
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}

func newClientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Create sample clients assigned to random active managers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, err := strconv.Atoi(clientFlags[countFlag].GetString())
			if err != nil {
				return fmt.Errorf("--%s must be a number: %w", countFlag, err)
			}
			svc, log, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			clients, err := svc.SeedClients(cmd.Context(), count)
			if err != nil {
				return err
			}
			log.Info().Int("created", len(clients)).Msg("clients seeded")
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, clientFlags)
	return cmd
}

func bootstrap(ctx context.Context) (service.SeedService, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: true})

	gormDB, err := db.NewMySQL(cfg.MySQL)
	if err != nil {
		return nil, log, err
	}
	if err := db.Migrate(gormDB, false); err != nil {
		return nil, log, err
	}
	return newSeedService(gormDB), log, nil
}

func newSeedService(gormDB *gorm.DB) service.SeedService {
	return service.NewSeedService(repository.NewUserRepository(gormDB), repository.NewClientRepository(gormDB))
}
