// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/cartvault/cartvault/lib/cart"
)

// ChecksumKey is the metadata key that names a device image. Saving or
// resolving a KindDeviceImage artifact without it is a validation
// error.
const ChecksumKey = "checksum"

// Resolver maps (identity, kind) pairs to paths under a storage root.
// It is a pure function of its inputs and never touches the filesystem.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver for root. The root is cleaned but not
// required to exist.
func NewResolver(root string) Resolver {
	return Resolver{root: filepath.Clean(root)}
}

// Root returns the storage root.
func (r Resolver) Root() string {
	return r.root
}

// KindDir returns the directory holding every artifact of kind.
func (r Resolver) KindDir(kind Kind) string {
	return filepath.Join(r.root, kind.subdirectory())
}

// Path returns the target path of an artifact:
// <root>/<kind-subdir>/<support-subdir>/<filename>.
// KindDeviceImage takes its filename from metadata[ChecksumKey].
func (r Resolver) Path(identity cart.Identity, kind Kind, metadata map[string]string) (string, error) {
	if err := validateRequest(identity, kind); err != nil {
		return "", err
	}

	var filename string
	switch kind {
	case KindCart:
		filename = identity.CartFilename()
	case KindGame:
		filename = identity.GameFilename()
	case KindSave:
		filename = identity.SaveFilename()
	case KindMetadata:
		filename = identity.MetadataFilename()
	case KindImage:
		filename = identity.ImageFilename()
	case KindDeviceImage:
		checksum := metadata[ChecksumKey]
		if checksum == "" {
			return "", &ValidationError{
				Kind:     kind,
				Identity: identity.ID(),
				Field:    ChecksumKey,
				Reason:   "device images require a checksum in metadata",
			}
		}
		filename = cart.DeviceImageFilename(checksum)
	default:
		panic(fmt.Sprintf("memory: no filename for %s", kind))
	}

	if filepath.Base(filename) != filename {
		return "", &ValidationError{
			Kind:     kind,
			Identity: identity.ID(),
			Field:    "filename",
			Reason:   fmt.Sprintf("%q contains a path separator", filename),
		}
	}

	return filepath.Join(r.KindDir(kind), supportDirectory(identity.Support), filename), nil
}

// Directories lists every kind × support directory, in kind order.
// Kinds sharing a subdirectory are listed once.
func (r Resolver) Directories() []string {
	seen := make(map[string]bool)
	var directories []string
	for _, kind := range Kinds() {
		for _, support := range cart.Supports() {
			directory := filepath.Join(r.KindDir(kind), supportDirectory(support))
			if seen[directory] {
				continue
			}
			seen[directory] = true
			directories = append(directories, directory)
		}
	}
	return directories
}

// Pattern returns an anchored expression matching the base names of
// the identity's artifacts of kind. For KindSave it matches the whole
// chain: the current file and every ".<n>" historized file.
// KindDeviceImage has no identity-scoped pattern.
func (r Resolver) Pattern(identity cart.Identity, kind Kind) (*regexp.Regexp, error) {
	if err := validateRequest(identity, kind); err != nil {
		return nil, err
	}

	var expression string
	switch kind {
	case KindCart:
		expression = "^" + regexp.QuoteMeta(identity.CartFilename()) + "$"
	case KindGame:
		expression = "^" + regexp.QuoteMeta(identity.GameFilename()) + "$"
	case KindSave:
		expression = "^" + regexp.QuoteMeta(identity.SaveFilename()) + `(\.[1-9][0-9]*)?$`
	case KindMetadata:
		expression = "^" + regexp.QuoteMeta(identity.MetadataFilename()) + "$"
	case KindImage:
		expression = "^" + regexp.QuoteMeta(identity.ImageFilename()) + "$"
	case KindDeviceImage:
		return nil, &ValidationError{
			Kind:     kind,
			Identity: identity.ID(),
			Field:    "kind",
			Reason:   "device images are keyed by checksum, not by cartridge identity",
		}
	default:
		panic(fmt.Sprintf("memory: no pattern for %s", kind))
	}
	return regexp.MustCompile(expression), nil
}

// supportDirectory groups artifacts by handheld variant. The two
// save-compatible variants share a directory.
func supportDirectory(support cart.Support) string {
	switch support {
	case cart.SupportGameBoy:
		return "Nintendo - Game Boy"
	case cart.SupportGameBoyColor, cart.SupportGameBoyOrGameBoyColor:
		return "Nintendo - Game Boy Color"
	case cart.SupportGameBoyAdvance:
		return "Nintendo - Game Boy Advance"
	default:
		panic(fmt.Sprintf("memory: no directory for support %q", string(support)))
	}
}

func validateRequest(identity cart.Identity, kind Kind) error {
	if !kind.Valid() {
		return &ValidationError{Kind: kind, Identity: identity.ID(), Field: "kind", Reason: "unknown artifact kind"}
	}
	if _, err := cart.ParseSupport(string(identity.Support)); err != nil {
		return &ValidationError{Kind: kind, Identity: identity.ID(), Field: "support", Reason: err.Error()}
	}
	if identity.ID() == "" {
		return &ValidationError{Kind: kind, Field: "id", Reason: "cartridge identity has an empty id"}
	}
	return nil
}
