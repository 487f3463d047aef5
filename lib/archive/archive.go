// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"filippo.io/age"

	"github.com/cartvault/cartvault/lib/atomicfile"
)

// Options configures Create and Extract.
type Options struct {
	Compression Compression

	// Recipient is an age X25519 public key ("age1..."). When set,
	// Create encrypts the archive to it.
	Recipient string

	// Identity is an age X25519 secret key ("AGE-SECRET-KEY-1...").
	// When set, Extract decrypts with it.
	Identity string
}

// Stats summarizes an archive operation.
type Stats struct {
	Files int
	Bytes int64
}

// GenerateKey returns a fresh age X25519 key pair as (secret key,
// public recipient).
func GenerateKey() (string, string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", "", fmt.Errorf("generating age identity: %w", err)
	}
	return identity.String(), identity.Recipient().String(), nil
}

// Create writes every regular file under root to w.
func Create(ctx context.Context, root string, w io.Writer, options Options) (Stats, error) {
	var stats Stats

	output := nopWriteCloser{w}
	var sink io.WriteCloser = output
	if options.Recipient != "" {
		recipient, err := age.ParseX25519Recipient(options.Recipient)
		if err != nil {
			return stats, fmt.Errorf("parsing archive recipient: %w", err)
		}
		encrypted, err := age.Encrypt(w, recipient)
		if err != nil {
			return stats, fmt.Errorf("starting encryption: %w", err)
		}
		sink = encrypted
	}

	compressed, err := compressor(sink, options.Compression)
	if err != nil {
		return stats, err
	}
	archive := tar.NewWriter(compressed)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() || atomicfile.IsTemp(entry.Name()) {
			return nil
		}
		written, err := addFile(archive, root, path)
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += written
		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("archiving %s: %w", root, walkErr)
	}

	if err := archive.Close(); err != nil {
		return stats, fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := compressed.Close(); err != nil {
		return stats, fmt.Errorf("flushing %s stream: %w", options.Compression, err)
	}
	if err := sink.Close(); err != nil {
		return stats, fmt.Errorf("finishing encryption: %w", err)
	}
	return stats, nil
}

func addFile(archive *tar.Writer, root, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return 0, err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, fmt.Errorf("building header for %s: %w", relative, err)
	}
	header.Name = filepath.ToSlash(relative)
	header.Format = tar.FormatPAX

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	if err := archive.WriteHeader(header); err != nil {
		return 0, fmt.Errorf("writing header for %s: %w", relative, err)
	}
	written, err := io.Copy(archive, file)
	if err != nil {
		return written, fmt.Errorf("writing %s: %w", relative, err)
	}
	return written, nil
}

// Extract restores an archive produced by Create into root. Existing
// files with the same relative path are replaced; other files in root
// are left alone.
func Extract(ctx context.Context, r io.Reader, root string, options Options) (Stats, error) {
	var stats Stats

	source := r
	if options.Identity != "" {
		identity, err := age.ParseX25519Identity(options.Identity)
		if err != nil {
			return stats, fmt.Errorf("parsing archive identity: %w", err)
		}
		decrypted, err := age.Decrypt(r, identity)
		if err != nil {
			return stats, fmt.Errorf("decrypting archive: %w", err)
		}
		source = decrypted
	}

	decompressed, closeDecompressor, err := decompressor(source, options.Compression)
	if err != nil {
		return stats, err
	}
	defer closeDecompressor()

	archive := tar.NewReader(decompressed)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		header, err := archive.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("reading archive: %w", err)
		}

		if !filepath.IsLocal(filepath.FromSlash(header.Name)) {
			return stats, fmt.Errorf("archive entry %q escapes the target root", header.Name)
		}
		switch header.Typeflag {
		case tar.TypeReg:
		case tar.TypeDir:
			continue
		default:
			return stats, fmt.Errorf("archive entry %q has unsupported type %q", header.Name, header.Typeflag)
		}

		target := filepath.Join(root, filepath.FromSlash(header.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return stats, fmt.Errorf("creating directory for %s: %w", header.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(archive, header.Size))
		if err != nil {
			return stats, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		if int64(len(data)) != header.Size {
			return stats, fmt.Errorf("archive entry %s is truncated", header.Name)
		}
		if err := atomicfile.Write(target, data, fs.FileMode(header.Mode).Perm()); err != nil {
			return stats, fmt.Errorf("restoring %s: %w", header.Name, err)
		}
		if err := os.Chtimes(target, header.ModTime, header.ModTime); err != nil {
			return stats, fmt.Errorf("restoring modification time of %s: %w", header.Name, err)
		}

		stats.Files++
		stats.Bytes += header.Size
	}
}
