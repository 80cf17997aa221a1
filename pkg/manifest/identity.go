// SPDX-License-Identifier: MPL-2.0

package manifest

// Identity is an optional identity token.
// The zero value is NoIdentity().
type Identity struct {
	token string
	ok    bool
}

// NoIdentity returns the absent identity.
func NoIdentity() Identity { return Identity{} }

// SomeIdentity returns an identity holding token.
// An empty token yields NoIdentity().
func SomeIdentity(token string) Identity {
	if token == "" {
		return NoIdentity()
	}
	return Identity{token: token, ok: true}
}

// Token returns the identity token and whether one is present.
func (i Identity) Token() (string, bool) { return i.token, i.ok }

// IsSome reports whether an identity token is present.
func (i Identity) IsSome() bool { return i.ok }

// String returns the token, or "<none>" for NoIdentity().
func (i Identity) String() string {
	if !i.ok {
		return "<none>"
	}
	return i.token
}
