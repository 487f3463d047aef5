// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/devimage"
	"github.com/cartvault/cartvault/lib/memory"
)

func deviceImageCommand(streams *IO) *cli.Command {
	var (
		globals  globalFlags
		identity identityFlags
		crc      string
		parsed   *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "device-image",
		Summary: "Convert box-art for the handheld device and store it",
		Usage:   "cartvault device-image --title T --support S --crc C <image|->",
		Description: `Convert a PNG, JPEG, GIF or WebP image into the device's thumbnail
format and store it as a DEVICE_IMAGE artifact.

The image is rotated a quarter turn counter-clockwise and scaled to a
height of 165 pixels. The stored file is named after --crc, the CRC the
device uses to look the game up in its library.`,
		Examples: []cli.Example{
			{
				Description: "Store converted box-art for the device",
				Command:     "cartvault device-image --title ZLA --code 01 --checksum 9F --support GAMEBOY --crc 1A2B3C4D zelda.png",
			},
		},
		Flags: func() *pflag.FlagSet {
			parsed = pflag.NewFlagSet("device-image", pflag.ContinueOnError)
			globals.addFlags(parsed)
			identity.addFlags(parsed)
			parsed.StringVar(&crc, "crc", "", "device library checksum naming the stored file (required)")
			return parsed
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Usagef("device-image takes exactly one image file (or - for stdin)")
			}
			if crc == "" {
				return cli.Usagef("--crc is required")
			}
			source, err := readSource(streams, args[0])
			if err != nil {
				return err
			}
			converted, err := devimage.Convert(source)
			if err != nil {
				return err
			}
			return globals.run(ctx, streams, "device-image", func(ctx context.Context, s *session) error {
				cartridge, err := identity.identity(ctx, parsed.Changed, s.memory)
				if err != nil {
					return err
				}
				result, err := s.memory.Save(ctx, cartridge, converted, memory.KindDeviceImage, map[string]string{
					memory.ChecksumKey: crc,
				})
				if err != nil {
					return err
				}
				s.logger.Debug("device image converted", "bytes", len(converted))
				if err := printSaveResult(streams.Stdout, result); err != nil {
					return fmt.Errorf("writing result: %w", err)
				}
				return nil
			})
		},
	}
}
