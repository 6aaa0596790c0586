package stacks

import "regexp"

// addressPattern matches a full principal: the testnet (ST) or mainnet (SP)
// prefix followed by exactly 39 alphanumerics. This is a format check only,
// not a checksum validation; the wallet layer performs the real validation
// before signing.
var addressPattern = regexp.MustCompile(`^(ST|SP)[a-zA-Z0-9]{39}$`)

// IsValidAddress reports whether s is a syntactically valid Stacks address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// AbbreviateAddress shortens an address for display, keeping the prefix and
// the checksum tail.
func AbbreviateAddress(address string) string {
	if len(address) < 41 {
		return address
	}
	return address[:5] + "..." + address[36:]
}
