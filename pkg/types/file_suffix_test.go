// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFileSuffixValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   FileSuffix
		wantErr bool
	}{
		{name: "mcpack", value: ".mcpack"},
		{name: "double extension", value: ".tar.gz"},
		{name: "empty", value: "", wantErr: true},
		{name: "dot only", value: ".", wantErr: true},
		{name: "missing dot", value: "zip", wantErr: true},
		{name: "path separator", value: ".a/b", wantErr: true},
		{name: "whitespace", value: ".my pack", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FileSuffix(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFileSuffix) {
				t.Errorf("error does not wrap ErrInvalidFileSuffix: %v", err)
			}
		})
	}
}

func TestFileSuffixMatches(t *testing.T) {
	t.Parallel()

	if !FileSuffix(".mcpack").Matches("alpha.mcpack") {
		t.Error("expected alpha.mcpack to match .mcpack")
	}
	if FileSuffix(".mcpack").Matches("alpha.mcaddon") {
		t.Error("did not expect alpha.mcaddon to match .mcpack")
	}
	if FileSuffix("").Matches("anything") {
		t.Error("empty suffix must not match")
	}
}
