// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/archive"
	"github.com/cartvault/cartvault/lib/atomicfile"
	"github.com/cartvault/cartvault/lib/secret"
)

func archiveCommand(streams *IO) *cli.Command {
	return &cli.Command{
		Name:    "archive",
		Summary: "Back up and restore the whole storage root",
		Description: `Write the storage root to a single compressed tar archive, or
restore one. Archives are compressed with zstd by default and can be
encrypted to an age X25519 recipient.`,
		Subcommands: []*cli.Command{
			archiveCreateCommand(streams),
			archiveExtractCommand(streams),
			archiveKeygenCommand(streams),
		},
		Examples: []cli.Example{
			{
				Description: "Create an encryption key pair",
				Command:     "cartvault archive keygen --out ~/.config/cartvault/archive.key",
			},
			{
				Description: "Back up to an encrypted archive",
				Command:     "cartvault archive create --out carts.tar.zst.age --recipient age1...",
			},
			{
				Description: "Restore it on another machine",
				Command:     "cartvault archive extract --identity-file ~/.config/cartvault/archive.key carts.tar.zst.age",
			},
		},
	}
}

func archiveCreateCommand(streams *IO) *cli.Command {
	var (
		globals     globalFlags
		output      string
		compression string
		recipient   string
	)
	return &cli.Command{
		Name:    "create",
		Summary: "Write the storage root to an archive",
		Usage:   "cartvault archive create [--out file] [--compression zstd|lz4|none] [--recipient age1...]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			flagSet.StringVarP(&output, "out", "o", "", "archive path (default cartvault-<date>.tar.<ext>, - for stdout)")
			flagSet.StringVar(&compression, "compression", "", "zstd, lz4 or none (overrides archive.compression)")
			flagSet.StringVar(&recipient, "recipient", "", "age public key to encrypt to (overrides archive.recipient)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("archive create takes no arguments")
			}
			return globals.run(ctx, streams, "archive create", func(ctx context.Context, s *session) error {
				local, err := s.requireLocal("archive create")
				if err != nil {
					return err
				}
				options, err := archiveOptions(s, compression)
				if err != nil {
					return err
				}
				options.Recipient = s.config.Archive.Recipient
				if recipient != "" {
					options.Recipient = recipient
				}

				path := output
				if path == "" {
					path = fmt.Sprintf("cartvault-%s%s", time.Now().Format("20060102-150405"), options.Compression.Extension())
					if options.Recipient != "" {
						path += ".age"
					}
				}

				if path == "-" {
					stats, err := archive.Create(ctx, local.Root(), streams.Stdout, options)
					if err != nil {
						return err
					}
					s.logger.Info("archive written", "files", stats.Files, "bytes", stats.Bytes)
					return nil
				}

				// A failed Create leaves nothing at path.
				var buffer bytes.Buffer
				stats, err := archive.Create(ctx, local.Root(), &buffer, options)
				if err != nil {
					return err
				}
				if err := atomicfile.Write(path, buffer.Bytes(), 0o600); err != nil {
					return err
				}
				s.logger.Info("archive written", "path", path, "files", stats.Files, "bytes", stats.Bytes)
				fmt.Fprintln(streams.Stdout, path)
				return nil
			})
		},
	}
}

func archiveExtractCommand(streams *IO) *cli.Command {
	var (
		globals      globalFlags
		compression  string
		identityFile string
	)
	return &cli.Command{
		Name:    "extract",
		Summary: "Restore an archive into the storage root",
		Usage:   "cartvault archive extract [--compression zstd|lz4|none] [--identity-file key] <archive|->",
		Description: `Restore an archive written by 'archive create' into the storage root.

Files in the archive replace files with the same path. Other files in
the root are left alone. Encrypted archives need --identity-file, the
secret key written by 'archive keygen'.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			globals.addFlags(flagSet)
			flagSet.StringVar(&compression, "compression", "", "zstd, lz4 or none (overrides archive.compression)")
			flagSet.StringVar(&identityFile, "identity-file", "", "age secret key file for encrypted archives")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return cli.Usagef("archive extract takes exactly one archive path (or - for stdin)")
			}
			return globals.run(ctx, streams, "archive extract", func(ctx context.Context, s *session) error {
				local, err := s.requireLocal("archive extract")
				if err != nil {
					return err
				}
				options, err := archiveOptions(s, compression)
				if err != nil {
					return err
				}
				if identityFile != "" {
					key, err := secret.ReadKeyFile(identityFile)
					if err != nil {
						return err
					}
					defer key.Close()
					options.Identity = key.String()
				}

				var source io.Reader = streams.Stdin
				if args[0] != "-" {
					file, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("opening archive: %w", err)
					}
					defer file.Close()
					source = file
				}

				stats, err := archive.Extract(ctx, source, local.Root(), options)
				if err != nil {
					return err
				}
				s.logger.Info("archive restored", "root", local.Root(), "files", stats.Files, "bytes", stats.Bytes)
				fmt.Fprintf(streams.Stdout, "restored %d files into %s\n", stats.Files, local.Root())
				return nil
			})
		},
	}
}

func archiveKeygenCommand(streams *IO) *cli.Command {
	var output string
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an archive encryption key pair",
		Description: `Generate an age X25519 key pair for archive encryption.

The public key (age1...) is printed to stdout; put it in
archive.recipient. The secret key goes to --out, readable only by the
owner. Without --out, both are printed.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVarP(&output, "out", "o", "", "write the secret key to this file")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("archive keygen takes no arguments")
			}
			secretKey, recipient, err := archive.GenerateKey()
			if err != nil {
				return err
			}
			keyFile := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
				time.Now().Format(time.RFC3339), recipient, secretKey)
			if output == "" {
				_, err := io.WriteString(streams.Stdout, keyFile)
				return err
			}
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("refusing to overwrite existing key file %s", output)
			}
			if err := atomicfile.Write(output, []byte(keyFile), 0o600); err != nil {
				return err
			}
			_, err = fmt.Fprintln(streams.Stdout, recipient)
			return err
		},
	}
}

func archiveOptions(s *session, compressionFlag string) (archive.Options, error) {
	name := s.config.Archive.Compression
	if compressionFlag != "" {
		name = compressionFlag
	}
	compression, err := archive.ParseCompression(name)
	if err != nil {
		return archive.Options{}, &cli.UsageError{Message: err.Error()}
	}
	return archive.Options{Compression: compression}, nil
}
