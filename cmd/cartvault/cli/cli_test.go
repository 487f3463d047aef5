// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testTree(ran *[]string) *Command {
	var kind string
	return &Command{
		Name:       "cartvault",
		HelpOutput: &bytes.Buffer{},
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List artifacts",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
					flagSet.StringVar(&kind, "kind", "", "artifact kind")
					return flagSet
				},
				Run: func(_ context.Context, args []string) error {
					*ran = append(*ran, "list:"+kind+":"+strings.Join(args, ","))
					return nil
				},
			},
			{
				Name:    "history",
				Summary: "Show the save chain",
				Run: func(_ context.Context, args []string) error {
					*ran = append(*ran, "history")
					return nil
				},
			},
		},
	}
}

func TestExecuteDispatchesWithFlags(t *testing.T) {
	var ran []string
	root := testTree(&ran)
	if err := root.Execute(context.Background(), []string{"list", "--kind", "SAVE", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ran) != 1 || ran[0] != "list:SAVE:extra" {
		t.Errorf("ran = %v", ran)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	var ran []string
	err := testTree(&ran).Execute(context.Background(), []string{"histroy"})
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("Execute error = %v, want *UsageError", err)
	}
	if !strings.Contains(err.Error(), `did you mean "history"`) {
		t.Errorf("error %q lacks suggestion", err)
	}
}

func TestExecuteSuggestsFlag(t *testing.T) {
	var ran []string
	err := testTree(&ran).Execute(context.Background(), []string{"list", "--knd", "SAVE"})
	if err == nil || !strings.Contains(err.Error(), "did you mean --kind?") {
		t.Errorf("Execute error = %v, want --kind suggestion", err)
	}
	if len(ran) != 0 {
		t.Errorf("command ran despite bad flag: %v", ran)
	}
}

func TestExecuteRequiresSubcommand(t *testing.T) {
	var ran []string
	err := testTree(&ran).Execute(context.Background(), nil)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Errorf("Execute error = %v, want *UsageError", err)
	}
}

func TestPrintHelp(t *testing.T) {
	var ran []string
	root := testTree(&ran)
	var help bytes.Buffer
	root.PrintHelp(&help)
	for _, want := range []string{"Usage:\n  cartvault <command> [flags]", "list", "Show the save chain"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help output lacks %q:\n%s", want, help.String())
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"save", "save", 0},
		{"sav", "save", 1},
		{"histroy", "history", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestTableAlignsColumns(t *testing.T) {
	table := NewTable("NAME", "KIND", "METADATA")
	table.Row("ZLA_01$9F.sav", "SAVE", "tag=CARTRIDGE")
	table.Row("ZLA_01$9F.sav.1", "SAVE")

	var out bytes.Buffer
	if err := table.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "NAME             KIND  METADATA\n" +
		"ZLA_01$9F.sav    SAVE  tag=CARTRIDGE\n" +
		"ZLA_01$9F.sav.1  SAVE  \n"
	if out.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", out.String(), want)
	}
}
