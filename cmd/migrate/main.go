package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-lotes/internal/application/auth"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

func main() {
	cfg := config.Read()
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	var databaseURL string
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Migraciones de la base de inventario por lotes",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", cfg.DB.ConnectionString(), "URL postgres:// (por defecto DATABASE_URL o DB_*)")

	withMigrator := func(fn func(m *postgres.Migrator) error) error {
		m, err := postgres.NewMigrator(databaseURL, log)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMigrator(func(m *postgres.Migrator) error { return m.Up() })
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones (todas si --steps=0)",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMigrator(func(m *postgres.Migrator) error { return m.Down(steps) })
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "número de migraciones a revertir")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión aplicada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *postgres.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "versión %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	}

	var adminEmail, adminPassword string
	adminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario administrador si el email no existe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			dbCfg := cfg.DB
			dbCfg.DatabaseURL = databaseURL
			pool, err := postgres.NewPool(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{})
			created, err := uc.EnsureAdmin(ctx, adminEmail, adminPassword)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s ya existe\n", adminEmail)
				return nil
			}
			log.Info().Str("email", adminEmail).Msg("administrador creado")
			return nil
		},
	}
	adminCmd.Flags().StringVar(&adminEmail, "email", cfg.Admin.Email, "email del administrador")
	adminCmd.Flags().StringVar(&adminPassword, "password", cfg.Admin.Password, "contraseña (mínimo 8 caracteres)")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, adminCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
