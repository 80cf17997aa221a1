// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/invowk/packmk/pkg/platform"
	"github.com/invowk/packmk/pkg/types"
)

// namer hands out unique artifact file names.
type namer struct {
	used map[string]bool
	// windowsSafe skips names Windows reserves for devices.
	windowsSafe bool
}

func newNamer(windowsSafe bool, reserved ...string) *namer {
	n := &namer{used: make(map[string]bool), windowsSafe: windowsSafe}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

// ArtifactBase returns the base name of a multi-package artifact: the
// smallest member name up to its first underscore. A member name that starts
// with an underscore is used whole.
func ArtifactBase(members []string) string {
	if len(members) == 0 {
		return ""
	}
	smallest := slices.Min(members)
	base, _, _ := strings.Cut(smallest, "_")
	if base == "" {
		return smallest
	}
	return base
}

// bundleName picks a unique file name for a multi-package group.
func (n *namer) bundleName(members []string, suffix types.FileSuffix) string {
	candidates := []string{ArtifactBase(members)}
	if full := slices.Min(members); full != candidates[0] {
		candidates = append(candidates, full)
	}
	return n.claim(candidates, suffix)
}

// singleName picks a unique file name for a single package.
func (n *namer) singleName(name string, suffix types.FileSuffix) string {
	return n.claim([]string{name}, suffix)
}

// claim returns the first free candidate, then numbered variants of the
// last one.
func (n *namer) claim(candidates []string, suffix types.FileSuffix) string {
	for _, c := range candidates {
		if name := c + string(suffix); !n.used[name] && !(n.windowsSafe && platform.IsReservedName(name)) {
			n.used[name] = true
			return name
		}
	}
	last := candidates[len(candidates)-1]
	for i := 2; ; i++ {
		if name := fmt.Sprintf("%s-%d%s", last, i, suffix); !n.used[name] {
			n.used[name] = true
			return name
		}
	}
}
