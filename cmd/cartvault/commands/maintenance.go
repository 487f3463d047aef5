// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/clock"
	"github.com/cartvault/cartvault/lib/sidestore"
)

func configureCommand(streams *IO) *cli.Command {
	var globals globalFlags
	return &cli.Command{
		Name:    "configure",
		Summary: "Create the storage directory skeleton",
		Description: `Create every kind and support directory under the storage root.

Safe to run repeatedly. Saving creates missing directories on demand,
so this is only needed to prepare an empty root for browsing or
syncing.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("configure", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("configure takes no arguments")
			}
			return globals.run(ctx, streams, "configure", func(ctx context.Context, s *session) error {
				if err := s.memory.Configure(ctx); err != nil {
					return err
				}
				fmt.Fprintln(streams.Stdout, s.config.Memory.Root)
				return nil
			})
		},
	}
}

func resetCommand(streams *IO) *cli.Command {
	var (
		globals globalFlags
		confirm bool
	)
	return &cli.Command{
		Name:    "reset",
		Summary: "Delete every stored artifact and recreate the empty root",
		Description: `Remove the storage root, including the metadata side-store, and
recreate the empty directory skeleton.

This cannot be undone. Take an archive first.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("reset", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			flagSet.BoolVar(&confirm, "yes", false, "confirm deletion")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("reset takes no arguments")
			}
			return globals.run(ctx, streams, "reset", func(ctx context.Context, s *session) error {
				local, err := s.requireLocal("reset")
				if err != nil {
					return err
				}
				if !confirm {
					return cli.Usagef("reset deletes everything under %s; pass --yes to confirm", local.Root())
				}
				if err := local.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(streams.Stdout, "reset %s\n", local.Root())
				return nil
			})
		},
	}
}

func sideStoreCommand(streams *IO) *cli.Command {
	return &cli.Command{
		Name:    "sidestore",
		Summary: "Maintain the metadata side-store",
		Subcommands: []*cli.Command{
			migrateCommand(streams),
		},
	}
}

func migrateCommand(streams *IO) *cli.Command {
	var (
		globals globalFlags
		from    string
		to      string
	)
	return &cli.Command{
		Name:    "migrate",
		Summary: "Copy metadata from one side-store backend to another",
		Description: `Copy every metadata entry from one side-store backend into another
under the same storage root. Entries already present in the target are
replaced. The source is left untouched.

After migrating, set memory.sidestore in the config file to the target
backend.`,
		Examples: []cli.Example{
			{
				Description: "Move a legacy data.json into SQLite",
				Command:     "cartvault sidestore migrate --from json --to sqlite",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			flagSet.StringVar(&from, "from", string(sidestore.BackendJSON), "source backend: json or sqlite")
			flagSet.StringVar(&to, "to", string(sidestore.BackendSQLite), "target backend: json or sqlite")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("migrate takes no arguments")
			}
			fromBackend, err := sidestore.ParseBackend(from)
			if err != nil {
				return &cli.UsageError{Message: err.Error()}
			}
			toBackend, err := sidestore.ParseBackend(to)
			if err != nil {
				return &cli.UsageError{Message: err.Error()}
			}
			if fromBackend == toBackend {
				return cli.Usagef("--from and --to name the same backend %q", fromBackend)
			}

			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}
			level, err := cfg.LogLevel()
			if err != nil {
				return &cli.UsageError{Message: err.Error()}
			}
			logger := cli.NewCommandLogger(streams.Stderr, level).With("command", "sidestore migrate")

			source, err := sidestore.Open(sidestore.Config{Backend: fromBackend, Root: cfg.Memory.Root, Logger: logger})
			if err != nil {
				return err
			}
			defer source.Close()
			target, err := sidestore.Open(sidestore.Config{Backend: toBackend, Root: cfg.Memory.Root, Clock: clock.Real(), Logger: logger})
			if err != nil {
				return err
			}
			defer target.Close()

			copied, err := sidestore.Migrate(ctx, source, target)
			if err != nil {
				return err
			}
			logger.Info("side-store migrated", "from", fromBackend, "to", toBackend, "entries", copied)
			fmt.Fprintf(streams.Stdout, "copied %d entries from %s to %s\n", copied, fromBackend, toBackend)
			return nil
		},
	}
}
