// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cart

import (
	"fmt"
)

// Support identifies the handheld variant a cartridge targets.
type Support string

const (
	SupportGameBoy               Support = "GAMEBOY"
	SupportGameBoyOrGameBoyColor Support = "GAMEBOY_OR_GAMEBOY_COLOR"
	SupportGameBoyColor          Support = "GAMEBOY_COLOR"
	SupportGameBoyAdvance        Support = "GAMEBOY_ADVANCE"
)

// Supports lists every known variant in declaration order.
func Supports() []Support {
	return []Support{
		SupportGameBoy,
		SupportGameBoyOrGameBoyColor,
		SupportGameBoyColor,
		SupportGameBoyAdvance,
	}
}

// ParseSupport converts the upper-case wire name of a variant back to a
// Support. Returns an error for unknown names.
func ParseSupport(name string) (Support, error) {
	for _, support := range Supports() {
		if string(support) == name {
			return support, nil
		}
	}
	return "", fmt.Errorf("unknown cartridge support %q", name)
}

// IsGameBoyFamily reports whether the variant runs on the original or
// color handheld (as opposed to the advance line).
func (s Support) IsGameBoyFamily() bool {
	switch s {
	case SupportGameBoy, SupportGameBoyOrGameBoyColor, SupportGameBoyColor:
		return true
	default:
		return false
	}
}

// GameExtension returns the ROM file extension (without the leading
// period) for the variant. Dual-mode carts are stored as color ROMs.
func (s Support) GameExtension() string {
	switch s {
	case SupportGameBoy:
		return "gb"
	case SupportGameBoyColor, SupportGameBoyOrGameBoyColor:
		return "gbc"
	case SupportGameBoyAdvance:
		return "gba"
	default:
		panic(fmt.Sprintf("cart: no game extension for support %q", string(s)))
	}
}

// Region is the market a cartridge was released for.
type Region string

const (
	RegionWorld             Region = "WORLD"
	RegionEurope            Region = "EUROPE"
	RegionUSA               Region = "USA"
	RegionAustralia         Region = "AUSTRALIA"
	RegionJapan             Region = "JAPAN"
	RegionEuropeOrUSA       Region = "EUROPE_OR_USA"
	RegionEuropeOrAustralia Region = "EUROPE_OR_AUSTRALIA"
	RegionUnknown           Region = "UNKNOWN"
)

// ParseRegion converts a region name to a Region. The empty string maps
// to RegionUnknown.
func ParseRegion(name string) (Region, error) {
	switch Region(name) {
	case "":
		return RegionUnknown, nil
	case RegionWorld, RegionEurope, RegionUSA, RegionAustralia, RegionJapan,
		RegionEuropeOrUSA, RegionEuropeOrAustralia, RegionUnknown:
		return Region(name), nil
	default:
		return "", fmt.Errorf("unknown cartridge region %q", name)
	}
}

// isWestern reports whether box-art for the region uses the square
// western layout.
func (r Region) isWestern() bool {
	switch r {
	case RegionEurope, RegionUSA, RegionEuropeOrUSA, RegionEuropeOrAustralia, RegionWorld:
		return true
	default:
		return false
	}
}

// Identity is everything read from one cartridge insertion. It is
// treated as immutable once read; all derived names are pure functions
// of its fields.
type Identity struct {
	Title          string
	Code           string
	HeaderChecksum string
	Support        Support
	Region         Region

	// IDOverride replaces the derived identifier when non-nil. Used to
	// disambiguate cartridges whose headers produce the same ID.
	IDOverride *string

	// ImageRatioOverride forces the box-art width/height ratio. Values
	// <= 0 are ignored.
	ImageRatioOverride *float64

	SaveSupported bool

	// SGBSupported marks carts with an enhanced mode on the console
	// adapter.
	SGBSupported bool
}

// ID returns the canonical identifier: the override if set, otherwise
// "{title}_{code}${checksum}".
func (identity Identity) ID() string {
	if identity.IDOverride != nil {
		return *identity.IDOverride
	}
	return identity.Title + "_" + identity.Code + "$" + identity.HeaderChecksum
}

// Validate checks that the identity can be used to derive paths.
func (identity Identity) Validate() error {
	if _, err := ParseSupport(string(identity.Support)); err != nil {
		return err
	}
	if identity.ID() == "" {
		return fmt.Errorf("cartridge identity has an empty id")
	}
	return nil
}

// ImageRatio returns the expected box-art width/height ratio and
// whether one is known. Japanese box-art ratios are estimates taken
// from retail box protectors.
func (identity Identity) ImageRatio() (float64, bool) {
	if identity.ImageRatioOverride != nil && *identity.ImageRatioOverride > 0 {
		return *identity.ImageRatioOverride, true
	}
	if identity.Region == RegionUnknown || identity.Region == "" {
		return 0, false
	}
	if identity.Region.isWestern() {
		return 1, true
	}
	if identity.Support.IsGameBoyFamily() {
		return 10.0 / 12.4, true
	}
	return 1.6, true
}

// CartFilename names the CART snapshot file. It deliberately ignores
// IDOverride: the snapshot is what stores the override, so it must be
// findable from the raw header alone.
func (identity Identity) CartFilename() string {
	return identity.Title + "_" + identity.Code + "@" + identity.HeaderChecksum + ".json"
}

// GameFilename names the ROM dump.
func (identity Identity) GameFilename() string {
	return identity.ID() + "." + identity.Support.GameExtension()
}

// SaveFilename names the current (unsuffixed) save file.
func (identity Identity) SaveFilename() string {
	return identity.ID() + ".sav"
}

// MetadataFilename names the descriptive metadata record.
func (identity Identity) MetadataFilename() string {
	return identity.ID() + ".json"
}

// ImageFilename names the box-art image.
func (identity Identity) ImageFilename() string {
	return identity.ID() + ".png"
}

// DeviceImageFilename names a device-specific image. These are keyed by
// a caller-supplied checksum (the game's CRC in the device's library)
// rather than by the cartridge id.
func DeviceImageFilename(checksum string) string {
	return checksum + ".bin"
}

// String renders the identity for logs and error messages.
func (identity Identity) String() string {
	return fmt.Sprintf("cart(id=%q, title=%q, code=%q, checksum=%q, support=%s, region=%s)",
		identity.ID(), identity.Title, identity.Code, identity.HeaderChecksum,
		identity.Support, identity.Region)
}
