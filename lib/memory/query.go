// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/cartvault/cartvault/lib/atomicfile"
	"github.com/cartvault/cartvault/lib/cart"
	"github.com/cartvault/cartvault/lib/digest"
	"github.com/cartvault/cartvault/lib/sidestore"
)

// errStopWalk ends a walk once the first match is found.
var errStopWalk = errors.New("stop walk")

func (m *LocalMemory) GetByName(ctx context.Context, name string, kind Kind, withContent bool) (*GameData, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Kind: kind, Field: "kind", Reason: "unknown artifact kind"}
	}
	resolver, algorithm, store := m.snapshot()

	var found string
	err := walkKind(ctx, resolver.KindDir(kind), func(path string) error {
		if filepath.Base(path) != name || !belongsToKind(kind, name) {
			return nil
		}
		found = path
		return errStopWalk
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, &StorageError{Op: "walk", Path: resolver.KindDir(kind), Err: err}
	}
	if found == "" {
		return nil, nil
	}

	data, err := m.load(ctx, found, kind, withContent, algorithm, store)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *LocalMemory) GetAll(ctx context.Context, identity cart.Identity, kind *Kind, withContent bool) ([]GameData, error) {
	if kind == nil {
		var all []GameData
		for _, each := range Kinds() {
			if each == KindDeviceImage {
				continue
			}
			found, err := m.GetAll(ctx, identity, &each, withContent)
			if err != nil {
				return nil, err
			}
			all = append(all, found...)
		}
		return all, nil
	}

	resolver, algorithm, store := m.snapshot()
	pattern, err := resolver.Pattern(identity, *kind)
	if err != nil {
		return nil, err
	}
	return m.collect(ctx, identity.ID(), resolver.KindDir(*kind), pattern, *kind, withContent, algorithm, store)
}

// History returns the identity's save chain, oldest historized file
// first and the current save last.
func (m *LocalMemory) History(ctx context.Context, identity cart.Identity) ([]GameData, error) {
	kind := KindSave
	chain, err := m.GetAll(ctx, identity, &kind, false)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(chain, func(a, b GameData) int {
		return historyRank(a.Version) - historyRank(b.Version)
	})
	return chain, nil
}

// historyRank orders the current file (version 0) after every
// historized file.
func historyRank(version int) int {
	if version == 0 {
		return int(^uint(0) >> 1)
	}
	return version
}

func (m *LocalMemory) collect(ctx context.Context, id, directory string, pattern *regexp.Regexp, kind Kind, withContent bool, algorithm digest.Algorithm, store sidestore.Store) ([]GameData, error) {
	var paths []string
	err := walkKind(ctx, directory, func(path string) error {
		if pattern.MatchString(filepath.Base(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "walk", Identity: id, Path: directory, Err: err}
	}

	found := make([]GameData, 0, len(paths))
	for _, path := range paths {
		data, err := m.load(ctx, path, kind, withContent, algorithm, store)
		if err != nil {
			return nil, err
		}
		found = append(found, *data)
	}
	return found, nil
}

// load reads one artifact and attaches its side-store attributes. The
// content is always read, since the digest needs it, and dropped
// afterwards unless withContent is set.
func (m *LocalMemory) load(ctx context.Context, path string, kind Kind, withContent bool, algorithm digest.Algorithm, store sidestore.Store) (*GameData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}
	stored, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}
	content, err := Decode(kind, stored)
	if err != nil {
		return nil, &StorageError{Op: "decode", Path: path, Err: err}
	}

	contentDigest := algorithm.Hex(content)
	attributes, exists, err := store.Get(ctx, contentDigest)
	if err != nil {
		return nil, &StorageError{Op: "sidestore", Path: path, Err: err}
	}
	if !exists {
		attributes = nil
	}

	name := filepath.Base(path)
	data := &GameData{
		Name:      name,
		ModTime:   info.ModTime(),
		Kind:      kind,
		Extension: filepath.Ext(name),
		Metadata:  attributes,
		Path:      path,
	}
	if kind == KindSave {
		data.Version, _ = saveVersion(name)
	}
	if withContent {
		data.Content = content
	}
	return data, nil
}

// belongsToKind separates the two kinds that share the game tree:
// save-chain files are KindSave, everything else there is KindGame.
func belongsToKind(kind Kind, name string) bool {
	switch kind {
	case KindSave:
		_, isSave := saveVersion(name)
		return isSave
	case KindGame:
		_, isSave := saveVersion(name)
		return !isSave
	case KindCart, KindMetadata, KindImage, KindDeviceImage:
		return true
	default:
		panic(fmt.Sprintf("memory: no ownership rule for %s", kind))
	}
}

// walkKind calls visit for every regular file under directory in
// lexical order, skipping in-flight temporary files. A missing
// directory is an empty tree.
func walkKind(ctx context.Context, directory string, visit func(path string) error) error {
	if _, err := os.Stat(directory); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() || atomicfile.IsTemp(entry.Name()) {
			return nil
		}
		return visit(path)
	})
}
