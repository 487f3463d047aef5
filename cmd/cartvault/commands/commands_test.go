// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/config"
	"github.com/cartvault/cartvault/lib/devimage"
	"github.com/cartvault/cartvault/lib/memory"
)

// zelda identifies the cartridge used throughout these tests.
var zelda = []string{"--title", "ZLA", "--code", "01", "--checksum", "9F", "--support", "GAMEBOY", "--region", "EUROPE"}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the command tree with the given stdin and arguments.
// CARTVAULT_CONFIG is cleared so the host configuration never leaks in.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")

	var stdout, stderr bytes.Buffer
	streams := &IO{Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}
	err := Root(streams).Execute(context.Background(), args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustExecute is execute that fails the test on error.
func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	got := execute(t, stdin, args...)
	if got.err != nil {
		t.Fatalf("cartvault %s: %v\nstderr: %s", strings.Join(args, " "), got.err, got.stderr)
	}
	return got.stdout
}

func command(name string, root string, extra ...string) []string {
	args := []string{name, "--root", root}
	return append(args, extra...)
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestSaveHistoryAndGet(t *testing.T) {
	root := t.TempDir()
	first := writeFile(t, filepath.Join(t.TempDir(), "first.sav"), []byte("first save"))

	output := mustExecute(t, "", command("save", root, append(zelda, "--kind", "SAVE", first)...)...)
	if !strings.HasPrefix(output, "saved ") {
		t.Errorf("first save output = %q", output)
	}

	output = mustExecute(t, "second save", command("save", root, append(zelda, "-")...)...)
	if !strings.Contains(output, "previous kept as") || !strings.Contains(output, "ZLA_01$9F.sav.1") {
		t.Errorf("second save output = %q, want historization notice", output)
	}

	output = mustExecute(t, "", command("history", root, append(zelda, "--json")...)...)
	var entries []artifactEntry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("parsing history JSON: %v\n%s", err, output)
	}
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	if entries[0].Name != "ZLA_01$9F.sav.1" || entries[0].Version != 1 {
		t.Errorf("oldest entry = %+v", entries[0])
	}
	if entries[1].Name != "ZLA_01$9F.sav" || entries[1].Version != 0 {
		t.Errorf("newest entry = %+v", entries[1])
	}

	if got := mustExecute(t, "", command("get", root, "--kind", "SAVE", "ZLA_01$9F.sav.1")...); got != "first save" {
		t.Errorf("get historized save = %q, want %q", got, "first save")
	}
	if got := mustExecute(t, "", command("get", root, "ZLA_01$9F.sav")...); got != "second save" {
		t.Errorf("get current save = %q, want %q", got, "second save")
	}
}

func TestSaveUnchangedContent(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, "same", command("save", root, append(zelda, "-")...)...)
	output := mustExecute(t, "same", command("save", root, append(zelda, "-")...)...)
	if !strings.HasPrefix(output, "unchanged ") {
		t.Errorf("repeated save output = %q, want unchanged", output)
	}
	if _, err := os.Stat(filepath.Join(root, "game", "Nintendo - Game Boy", "ZLA_01$9F.sav.1")); !os.IsNotExist(err) {
		t.Errorf("repeated save historized the current file (stat error %v)", err)
	}
}

func TestListShowsMetadata(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, "rom", command("save", root, append(zelda, "--kind", "GAME", "-")...)...)
	mustExecute(t, "ram", command("save", root, append(zelda, "--meta", "note=before boss", "--meta", "slot=1", "-")...)...)

	output := mustExecute(t, "", command("list", root, zelda...)...)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("list printed %d lines, want heading plus 2 rows:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[1], "GAME") || !strings.Contains(lines[1], "ZLA_01$9F.gb") {
		t.Errorf("first row = %q, want the ROM", lines[1])
	}
	if !strings.HasPrefix(lines[2], "SAVE") || !strings.Contains(lines[2], "note=before boss slot=1") {
		t.Errorf("second row = %q, want the save with metadata", lines[2])
	}

	output = mustExecute(t, "", command("list", root, append(zelda, "--kind", "game", "--json")...)...)
	var entries []artifactEntry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("parsing list JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != "GAME" {
		t.Errorf("list --kind game = %+v", entries)
	}
}

func TestImageRoundTrip(t *testing.T) {
	root := t.TempDir()
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}
	source := writeFile(t, filepath.Join(t.TempDir(), "box.png"), raw)

	mustExecute(t, "", command("save", root, append(zelda, "--kind", "IMAGE", source)...)...)

	stored, err := os.ReadFile(filepath.Join(root, "image", "Nintendo - Game Boy", "ZLA_01$9F.png"))
	if err != nil {
		t.Fatalf("reading stored image: %v", err)
	}
	if !bytes.Equal(stored, raw) {
		t.Errorf("stored image = %x, want raw bytes %x", stored, raw)
	}

	out := filepath.Join(t.TempDir(), "restored.png")
	mustExecute(t, "", command("get", root, "--kind", "IMAGE", "--out", out, "ZLA_01$9F.png")...)
	restored, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading restored image: %v", err)
	}
	if !bytes.Equal(restored, raw) {
		t.Errorf("restored image = %x, want %x", restored, raw)
	}
}

func TestCartSnapshotAppliesOverride(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, `{"id_override": "Links Awakening", "image_ratio_override": null}`,
		command("save", root, append(zelda, "--kind", "CART", "-")...)...)

	output := mustExecute(t, "ram", command("save", root, append(zelda, "-")...)...)
	if !strings.Contains(output, "Links Awakening.sav") {
		t.Errorf("save after snapshot = %q, want the overridden id", output)
	}

	// An explicit flag beats the snapshot.
	output = mustExecute(t, "ram", command("save", root, append(zelda, "--id-override", "Zelda", "-")...)...)
	if !strings.Contains(output, "Zelda.sav") {
		t.Errorf("save with --id-override = %q", output)
	}
}

func TestDeviceImage(t *testing.T) {
	root := t.TempDir()
	picture := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			picture.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, picture); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	source := writeFile(t, filepath.Join(t.TempDir(), "box.png"), encoded.Bytes())

	got := execute(t, "", command("device-image", root, append(zelda, source)...)...)
	if ExitCode(got.err) != cli.ExitUsage {
		t.Errorf("device-image without --crc: exit %d (%v), want %d", ExitCode(got.err), got.err, cli.ExitUsage)
	}

	mustExecute(t, "", command("device-image", root, append(zelda, "--crc", "1A2B3C4D", source)...)...)
	stored, err := os.ReadFile(filepath.Join(root, "device_image", "Nintendo - Game Boy", "1A2B3C4D.bin"))
	if err != nil {
		t.Fatalf("reading device image: %v", err)
	}
	decoded, err := devimage.Decode(stored)
	if err != nil {
		t.Fatalf("decoding device image: %v", err)
	}
	if decoded.Bounds().Dy() != devimage.Height {
		t.Errorf("device image height = %d, want %d", decoded.Bounds().Dy(), devimage.Height)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, "precious", command("save", root, append(zelda, "--meta", "note=keep", "-")...)...)

	keyFile := filepath.Join(t.TempDir(), "archive.key")
	recipient := strings.TrimSpace(mustExecute(t, "", "archive", "keygen", "--out", keyFile))
	if !strings.HasPrefix(recipient, "age1") {
		t.Fatalf("keygen printed %q, want an age recipient", recipient)
	}
	if got := execute(t, "", "archive", "keygen", "--out", keyFile); got.err == nil {
		t.Error("keygen overwrote an existing key file")
	}

	archivePath := filepath.Join(t.TempDir(), "backup.tar.zst.age")
	mustExecute(t, "", "archive", "create", "--root", root, "--out", archivePath, "--recipient", recipient)

	restored := t.TempDir()
	output := mustExecute(t, "", "archive", "extract", "--root", restored, "--identity-file", keyFile, archivePath)
	if !strings.HasPrefix(output, "restored ") {
		t.Errorf("extract output = %q", output)
	}

	if got := mustExecute(t, "", command("get", restored, "ZLA_01$9F.sav")...); got != "precious" {
		t.Errorf("restored save = %q, want %q", got, "precious")
	}
	listing := mustExecute(t, "", command("list", restored, zelda...)...)
	if !strings.Contains(listing, "note=keep") {
		t.Errorf("restored listing lost metadata:\n%s", listing)
	}

	if got := execute(t, "", "archive", "extract", "--root", t.TempDir(), archivePath); got.err == nil {
		t.Error("extracting an encrypted archive without a key succeeded")
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, "ram", command("save", root, append(zelda, "-")...)...)
	savePath := filepath.Join(root, "game", "Nintendo - Game Boy", "ZLA_01$9F.sav")

	got := execute(t, "", command("reset", root)...)
	if ExitCode(got.err) != cli.ExitUsage {
		t.Errorf("reset without --yes: exit %d (%v)", ExitCode(got.err), got.err)
	}
	if _, err := os.Stat(savePath); err != nil {
		t.Fatalf("unconfirmed reset removed the save: %v", err)
	}

	mustExecute(t, "", command("reset", root, "--yes")...)
	if _, err := os.Stat(savePath); !os.IsNotExist(err) {
		t.Errorf("save survived reset (stat error %v)", err)
	}
	if info, err := os.Stat(filepath.Join(root, "metadata", "Nintendo - Game Boy Advance")); err != nil || !info.IsDir() {
		t.Errorf("reset did not recreate the skeleton: %v", err)
	}
}

func TestSideStoreMigrate(t *testing.T) {
	root := t.TempDir()
	mustExecute(t, "ram", command("save", root, append(zelda, "--meta", "note=migrated", "-")...)...)

	output := mustExecute(t, "", "sidestore", "migrate", "--root", root)
	if output != "copied 1 entries from json to sqlite\n" {
		t.Errorf("migrate output = %q", output)
	}

	configPath := writeFile(t, filepath.Join(t.TempDir(), "cartvault.yaml"), []byte("memory:\n  sidestore: sqlite\n"))
	listing := mustExecute(t, "", append([]string{"list", "--config", configPath, "--root", root}, zelda...)...)
	if !strings.Contains(listing, "note=migrated") {
		t.Errorf("listing through the sqlite side-store lost metadata:\n%s", listing)
	}

	got := execute(t, "", "sidestore", "migrate", "--root", root, "--from", "json", "--to", "json")
	if ExitCode(got.err) != cli.ExitUsage {
		t.Errorf("migrate json to json: exit %d (%v)", ExitCode(got.err), got.err)
	}
}

func TestDisabledMemory(t *testing.T) {
	root := t.TempDir()
	configPath := writeFile(t, filepath.Join(t.TempDir(), "cartvault.yaml"), []byte("memory:\n  disabled: true\n"))

	output := mustExecute(t, "ram", append([]string{"save", "--config", configPath, "--root", root}, append(zelda, "-")...)...)
	if !strings.Contains(output, "memory disabled") {
		t.Errorf("save with disabled memory = %q", output)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("disabled memory wrote %d entries into the root", len(entries))
	}

	got := execute(t, "", append([]string{"history", "--config", configPath, "--root", root}, zelda...)...)
	if ExitCode(got.err) != cli.ExitUsage {
		t.Errorf("history with disabled memory: exit %d (%v)", ExitCode(got.err), got.err)
	}
}

func TestConfigureCreatesSkeleton(t *testing.T) {
	root := filepath.Join(t.TempDir(), "carts")
	output := mustExecute(t, "", command("configure", root)...)
	if strings.TrimSpace(output) != root {
		t.Errorf("configure printed %q, want %q", output, root)
	}
	for _, directory := range []string{"cart", "game", "metadata", "image", "device_image"} {
		if info, err := os.Stat(filepath.Join(root, directory, "Nintendo - Game Boy Color")); err != nil || !info.IsDir() {
			t.Errorf("%s tree missing: %v", directory, err)
		}
	}
}

func TestInputErrors(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown support", command("save", root, "--title", "X", "--support", "NES", "-"), cli.ExitUsage},
		{"missing title", command("save", root, "--support", "GAMEBOY", "-"), cli.ExitUsage},
		{"unknown kind", command("save", root, append(zelda, "--kind", "ROM", "-")...), cli.ExitUsage},
		{"device image kind", command("save", root, append(zelda, "--kind", "DEVICE_IMAGE", "-")...), cli.ExitUsage},
		{"bad metadata pair", command("save", root, append(zelda, "--meta", "novalue", "-")...), cli.ExitUsage},
		{"id with separator", command("save", root, append(zelda, "--id-override", "a/b", "-")...), cli.ExitUsage},
		{"bad log level", command("save", root, append(zelda, "--log-level", "loud", "-")...), cli.ExitUsage},
		{"invalid json", command("save", root, append(zelda, "--kind", "METADATA", "-")...), 1},
		{"missing artifact", command("get", root, "nothing.sav"), 1},
		{"unknown command", []string{"restore"}, cli.ExitUsage},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := execute(t, "{not json", test.args...)
			if got.err == nil {
				t.Fatalf("cartvault %s succeeded", strings.Join(test.args, " "))
			}
			if code := ExitCode(got.err); code != test.want {
				t.Errorf("exit code = %d (%v), want %d", code, got.err, test.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit error", &cli.ExitError{Code: 3}, 3},
		{"usage", cli.Usagef("bad"), cli.ExitUsage},
		{"wrapped validation", fmt.Errorf("saving: %w", &memory.ValidationError{Kind: memory.KindSave}), cli.ExitUsage},
		{"storage", &memory.StorageError{Op: "write", Err: errors.New("disk full")}, 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestVersion(t *testing.T) {
	output := mustExecute(t, "", "version")
	if !strings.HasPrefix(output, "cartvault ") {
		t.Errorf("version output = %q", output)
	}

	var build map[string]any
	if err := json.Unmarshal([]byte(mustExecute(t, "", "version", "--json")), &build); err != nil {
		t.Fatalf("version --json is not JSON: %v", err)
	}
}
