// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/invowk/packmk/pkg/cueutil"

	"cuelang.org/go/cue"
)

const (
	// DefaultFileName is the descriptor file looked for in each package directory.
	DefaultFileName = "manifest.json"

	// MaxDescriptorSize caps the size of a descriptor file.
	MaxDescriptorSize int64 = 1 << 20
)

//go:embed manifest_schema.cue
var schema []byte

// ErrMalformedDescriptor is the sentinel wrapped by MalformedDescriptorError.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

type (
	// Manifest is the subset of a descriptor that packmk uses.
	Manifest struct {
		// Path is the descriptor file the manifest was read from.
		Path string
		// Name is header.name, informational only.
		Name string
		// Identity is header.uuid.
		Identity Identity
		// Dependencies keeps the descriptor's order.
		Dependencies []Dependency
	}

	// Dependency is one entry of the descriptor's dependencies list.
	Dependency struct {
		// HasIdentityRef is true when the entry carries a "uuid" field of
		// any value, even an empty string or null.
		HasIdentityRef bool
		// Ref is the referenced identity; NoIdentity() when the field is
		// absent, empty or not a string.
		Ref Identity
		// ModuleName is set for script-module dependencies.
		ModuleName string
		// Version is kept as decoded (string or [major, minor, patch]).
		Version any
	}

	// MalformedDescriptorError reports a descriptor that could not be parsed
	// or does not match the descriptor schema.
	MalformedDescriptorError struct {
		Path  string
		Cause error
	}

	rawManifest struct {
		Header       rawHeader       `json:"header"`
		Dependencies []rawDependency `json:"dependencies"`
	}

	rawHeader struct {
		Name string `json:"name"`
		UUID any    `json:"uuid"`
	}

	rawDependency struct {
		UUID       any    `json:"uuid"`
		ModuleName string `json:"module_name"`
		Version    any    `json:"version"`
	}
)

// Error implements the error interface.
func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %s: %v", e.Path, e.Cause)
}

// Unwrap exposes both ErrMalformedDescriptor and the parse cause.
func (e *MalformedDescriptorError) Unwrap() []error {
	return []error{ErrMalformedDescriptor, e.Cause}
}

// Load reads and parses the descriptor at path.
// Parse failures are returned as *MalformedDescriptorError; I/O failures are
// returned wrapped as-is.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes descriptor bytes. filename is used for Path and in errors.
func Parse(data []byte, filename string) (*Manifest, error) {
	res, err := cueutil.ParseAndDecode[rawManifest](schema, data, "#Manifest",
		cueutil.WithFilename(filename),
		cueutil.WithMaxFileSize(MaxDescriptorSize),
	)
	if err != nil {
		return nil, &MalformedDescriptorError{Path: filename, Cause: err}
	}

	raw := res.Value
	m := &Manifest{
		Path:         filename,
		Name:         raw.Header.Name,
		Identity:     identityOf(raw.Header.UUID),
		Dependencies: make([]Dependency, 0, len(raw.Dependencies)),
	}
	present := identityRefKeys(res.Unified)
	for i, rd := range raw.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{
			HasIdentityRef: i < len(present) && present[i],
			Ref:            identityOf(rd.UUID),
			ModuleName:     rd.ModuleName,
			Version:        rd.Version,
		})
	}
	return m, nil
}

func identityOf(v any) Identity {
	token, ok := v.(string)
	if !ok {
		return NoIdentity()
	}
	return SomeIdentity(token)
}

// identityRefKeys reports, per dependency entry, whether a "uuid" key is
// present. A decoded nil cannot tell "uuid": null from a missing key.
func identityRefKeys(v cue.Value) []bool {
	list, err := v.LookupPath(cue.ParsePath("dependencies")).List()
	if err != nil {
		return nil
	}
	var present []bool
	for list.Next() {
		present = append(present, hasRegularField(list.Value(), "uuid"))
	}
	return present
}

func hasRegularField(v cue.Value, name string) bool {
	iter, err := v.Fields()
	if err != nil {
		return false
	}
	for iter.Next() {
		if iter.Selector().String() == name {
			return true
		}
	}
	return false
}
