package database

import "encoding/hex"

// Address identifies an account. The node treats it purely as an opaque
// byte-string identifier: no key derivation or signature scheme is
// enforced.
type Address []byte

// String renders the address as lowercase hex for logs and RPC responses.
func (a Address) String() string {
	return hex.EncodeToString(a)
}

// Equal reports whether two addresses carry the same bytes.
func (a Address) Equal(other Address) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// AddressFromHex parses a hex-encoded address, the form used at RPC and CLI
// boundaries.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Address(b), nil
}
