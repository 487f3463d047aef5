// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/memory"
)

func saveCommand(streams *IO) *cli.Command {
	var (
		globals  globalFlags
		identity identityFlags
		kindName string
		metadata []string
		parsed   *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "save",
		Summary: "Store a file as a cartridge artifact",
		Usage:   "cartvault save --title T --support S [--kind K] [--meta k=v ...] <file|->",
		Description: `Store file content as one artifact of a cartridge.

Reads the named file, or stdin when the argument is "-". IMAGE content
is read as raw image bytes. CART and METADATA content must be JSON.

Saving identical content again is a no-op. A new SAVE pushes the
previous save file to the lowest free numbered suffix (.1, .2, ...).
Metadata attributes are recorded against the content digest.`,
		Examples: []cli.Example{
			{
				Description: "Back up a save file with a note",
				Command:     "cartvault save --title ZLA --code 01 --checksum 9F --support GAMEBOY --kind SAVE --meta note=before-boss zelda.sav",
			},
			{
				Description: "Store a ROM dump from stdin",
				Command:     "dump-cart | cartvault save --title ZLA --code 01 --checksum 9F --support GAMEBOY --kind GAME -",
			},
		},
		Flags: func() *pflag.FlagSet {
			parsed = pflag.NewFlagSet("save", pflag.ContinueOnError)
			globals.addFlags(parsed)
			identity.addFlags(parsed)
			parsed.StringVar(&kindName, "kind", memory.KindSave.String(), "artifact kind: CART, GAME, SAVE, METADATA or IMAGE")
			parsed.StringArrayVar(&metadata, "meta", nil, "metadata attribute as key=value (repeatable)")
			return parsed
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Usagef("save takes exactly one file argument (or - for stdin)")
			}
			kind, err := parseKindFlag(kindName)
			if err != nil {
				return err
			}
			if kind == memory.KindDeviceImage {
				return cli.Usagef("device images are stored with 'cartvault device-image'")
			}
			attributes, err := parseMetadata(metadata)
			if err != nil {
				return err
			}
			content, err := readSource(streams, args[0])
			if err != nil {
				return err
			}
			if kind == memory.KindImage {
				content = []byte(base64.StdEncoding.EncodeToString(content))
			}

			return globals.run(ctx, streams, "save", func(ctx context.Context, s *session) error {
				cartridge, err := identity.identity(ctx, parsed.Changed, s.memory)
				if err != nil {
					return err
				}
				result, err := s.memory.Save(ctx, cartridge, content, kind, attributes)
				if err != nil {
					return err
				}
				return printSaveResult(streams.Stdout, result)
			})
		},
	}
}

func printSaveResult(w io.Writer, result memory.SaveResult) error {
	switch {
	case result.Path == "":
		_, err := fmt.Fprintln(w, "not stored (memory disabled)")
		return err
	case result.Skipped:
		_, err := fmt.Fprintf(w, "unchanged %s\n", result.Path)
		return err
	case result.HistorizedAs != "":
		_, err := fmt.Fprintf(w, "saved %s (previous kept as %s)\n", result.Path, result.HistorizedAs)
		return err
	default:
		_, err := fmt.Fprintf(w, "saved %s\n", result.Path)
		return err
	}
}

func parseKindFlag(name string) (memory.Kind, error) {
	kind, err := memory.ParseKind(strings.ToUpper(name))
	if err != nil {
		return 0, &cli.UsageError{Message: err.Error()}
	}
	return kind, nil
}

// parseMetadata turns repeated key=value flags into an attribute map.
// Returns nil when there are none.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attributes := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, cli.Usagef("--meta %q: want key=value", pair)
		}
		attributes[key] = value
	}
	return attributes, nil
}

// readSource reads a file argument, or stdin for "-".
func readSource(streams *IO, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(streams.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
