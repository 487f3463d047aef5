// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the cartvault CLI command tree. Every command
// loads configuration the same way (--config, then CARTVAULT_CONFIG,
// then built-in defaults), opens the storage engine under the
// configured root, and closes it before returning.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/version"
)

// IO carries the standard streams. Tests substitute buffers.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Stdio returns an IO bound to the process streams.
func Stdio() *IO {
	return &IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Root builds the complete command tree.
func Root(streams *IO) *cli.Command {
	return &cli.Command{
		Name: "cartvault",
		Description: `cartvault: cartridge backup storage.

Stores ROM dumps, save files, cart snapshots, metadata and box-art for
handheld cartridges under one storage root. Save files are never
overwritten: each new save pushes the previous one into a numbered
history.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			configureCommand(streams),
			saveCommand(streams),
			getCommand(streams),
			listCommand(streams),
			historyCommand(streams),
			deviceImageCommand(streams),
			archiveCommand(streams),
			sideStoreCommand(streams),
			resetCommand(streams),
			versionCommand(streams),
		},
		Examples: []cli.Example{
			{
				Description: "Create the storage skeleton",
				Command:     "cartvault configure --root /mnt/backup/carts",
			},
			{
				Description: "Back up a save file",
				Command:     "cartvault save --title ZLA --code 01 --checksum 9F --support GAMEBOY --kind SAVE zelda.sav",
			},
			{
				Description: "Show every stored save of a cartridge",
				Command:     "cartvault history --title ZLA --code 01 --checksum 9F --support GAMEBOY",
			},
			{
				Description: "Back up the whole root, encrypted",
				Command:     "cartvault archive create --out carts.tar.zst --recipient age1...",
			},
		},
	}
}

func versionCommand(streams *IO) *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&asJSON, "json", false, "print build information as JSON")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("version takes no arguments")
			}
			if asJSON {
				return cli.WriteJSON(streams.Stdout, version.Current())
			}
			_, err := fmt.Fprintf(streams.Stdout, "cartvault %s\n", version.Full())
			return err
		},
	}
}
