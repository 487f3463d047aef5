// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/atomicfile"
	"github.com/cartvault/cartvault/lib/memory"
)

func getCommand(streams *IO) *cli.Command {
	var (
		globals  globalFlags
		kindName string
		output   string
	)
	return &cli.Command{
		Name:    "get",
		Summary: "Print or extract one stored artifact by file name",
		Usage:   "cartvault get --kind K [--out file] <name>",
		Description: `Look up an artifact by its stored file name and write its content.

Historized saves are addressed by their suffixed name ("ZLA_01$9F.sav.2").
IMAGE content is written as raw image bytes; CART and METADATA as
compact JSON. Without --out, content goes to stdout.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			flagSet.StringVar(&kindName, "kind", memory.KindSave.String(), "artifact kind")
			flagSet.StringVarP(&output, "out", "o", "", "write content to this file instead of stdout")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Usagef("get takes exactly one artifact name")
			}
			kind, err := parseKindFlag(kindName)
			if err != nil {
				return err
			}
			return globals.run(ctx, streams, "get", func(ctx context.Context, s *session) error {
				data, err := s.memory.GetByName(ctx, args[0], kind, true)
				if err != nil {
					return err
				}
				if data == nil {
					return fmt.Errorf("no %s artifact named %q", kind, args[0])
				}

				content := data.Content
				if kind == memory.KindImage {
					content, err = base64.StdEncoding.DecodeString(string(content))
					if err != nil {
						return fmt.Errorf("decoding image %s: %w", data.Path, err)
					}
				}
				if output != "" {
					if err := atomicfile.Write(output, content, 0o644); err != nil {
						return err
					}
					s.logger.Info("artifact written", "name", data.Name, "path", output)
					return nil
				}
				_, err = streams.Stdout.Write(content)
				return err
			})
		},
	}
}
