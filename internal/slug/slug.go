// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives stable category identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

// nonAlphanumeric matches every rune outside lowercase ASCII letters and digits.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// ID returns the category id for a name: trimmed, lowercased, with every
// character outside [a-z0-9] replaced by an underscore. Replacement is per
// rune and runs are not collapsed, so "Séries" becomes "s_ries".
//
// Example: "Dark Fantasy!" → "dark_fantasy_"
func ID(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}
