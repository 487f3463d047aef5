// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/memory"
)

func listCommand(streams *IO) *cli.Command {
	var (
		globals  globalFlags
		identity identityFlags
		kindName string
		asJSON   bool
		parsed   *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "list",
		Summary: "List the stored artifacts of a cartridge",
		Usage:   "cartvault list --title T --support S [--kind K] [--json]",
		Description: `List every stored artifact of a cartridge with its recorded metadata.

Without --kind, every kind except DEVICE_IMAGE is listed. Device images
are keyed by checksum, not by cartridge, and are fetched with 'get'.`,
		Flags: func() *pflag.FlagSet {
			parsed = pflag.NewFlagSet("list", pflag.ContinueOnError)
			globals.addFlags(parsed)
			identity.addFlags(parsed)
			parsed.StringVar(&kindName, "kind", "", "only list this kind")
			parsed.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
			return parsed
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("list takes no arguments")
			}
			var kind *memory.Kind
			if kindName != "" {
				parsedKind, err := parseKindFlag(kindName)
				if err != nil {
					return err
				}
				kind = &parsedKind
			}
			return globals.run(ctx, streams, "list", func(ctx context.Context, s *session) error {
				cartridge, err := identity.identity(ctx, parsed.Changed, s.memory)
				if err != nil {
					return err
				}
				artifacts, err := s.memory.GetAll(ctx, cartridge, kind, false)
				if err != nil {
					return err
				}
				slices.SortFunc(artifacts, func(a, b memory.GameData) int {
					if a.Kind != b.Kind {
						return int(a.Kind) - int(b.Kind)
					}
					return strings.Compare(a.Name, b.Name)
				})
				return writeArtifacts(streams, artifacts, asJSON)
			})
		},
	}
}

func historyCommand(streams *IO) *cli.Command {
	var (
		globals  globalFlags
		identity identityFlags
		asJSON   bool
		parsed   *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "history",
		Summary: "Show a cartridge's save files, oldest first",
		Usage:   "cartvault history --title T --support S [--json]",
		Flags: func() *pflag.FlagSet {
			parsed = pflag.NewFlagSet("history", pflag.ContinueOnError)
			globals.addFlags(parsed)
			identity.addFlags(parsed)
			parsed.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
			return parsed
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("history takes no arguments")
			}
			return globals.run(ctx, streams, "history", func(ctx context.Context, s *session) error {
				local, err := s.requireLocal("history")
				if err != nil {
					return err
				}
				cartridge, err := identity.identity(ctx, parsed.Changed, s.memory)
				if err != nil {
					return err
				}
				chain, err := local.History(ctx, cartridge)
				if err != nil {
					return err
				}
				return writeArtifacts(streams, chain, asJSON)
			})
		},
	}
}

// artifactEntry is the JSON form of a listed artifact.
type artifactEntry struct {
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Version  int               `json:"version"`
	Modified time.Time         `json:"modified"`
	Path     string            `json:"path"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeArtifacts(streams *IO, artifacts []memory.GameData, asJSON bool) error {
	if asJSON {
		entries := make([]artifactEntry, 0, len(artifacts))
		for _, artifact := range artifacts {
			entries = append(entries, artifactEntry{
				Name:     artifact.Name,
				Kind:     artifact.Kind.String(),
				Version:  artifact.Version,
				Modified: artifact.ModTime.UTC(),
				Path:     artifact.Path,
				Metadata: artifact.Metadata,
			})
		}
		return cli.WriteJSON(streams.Stdout, entries)
	}

	table := cli.NewTable("KIND", "NAME", "VERSION", "MODIFIED", "METADATA")
	for _, artifact := range artifacts {
		table.Row(
			artifact.Kind.String(),
			artifact.Name,
			formatVersion(artifact.Version),
			artifact.ModTime.Local().Format(time.DateTime),
			formatMetadata(artifact.Metadata),
		)
	}
	return table.Write(streams.Stdout)
}

// formatMetadata renders attributes as sorted key=value pairs.
func formatMetadata(attributes map[string]string) string {
	pairs := make([]string, 0, len(attributes))
	for _, key := range slices.Sorted(maps.Keys(attributes)) {
		pairs = append(pairs, key+"="+attributes[key])
	}
	return strings.Join(pairs, " ")
}
