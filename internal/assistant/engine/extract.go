package engine

import (
	"regexp"
	"strconv"
)

// DefaultMemo is attached to every transfer action the engine produces.
const DefaultMemo = "Sent via Stacks Chat Assistant"

// Amounts must not sit inside a longer alphanumeric run, otherwise digit
// sequences embedded in an address would be misread as amounts. The address
// pattern therefore wins for any span adjacent to other alphanumerics.
var (
	amountPattern  = regexp.MustCompile(`(?:^|[^A-Za-z0-9])([0-9.]+)\s*(?:(?i:stx))?(?:[^A-Za-z0-9]|$)`)
	addressPattern = regexp.MustCompile(`(ST|SP)[a-zA-Z0-9]{39}`)

	standaloneAddressPattern = regexp.MustCompile(`^(ST[a-zA-Z0-9]{39}|SP[a-zA-Z0-9]{39})$`)
	standaloneAmountPattern  = regexp.MustCompile(`(?i)^([0-9.]+)\s*(?:stx)?$`)
)

// ExtractAmount returns the first amount-like number in text. Zero and
// unparseable matches count as absent, mirroring how a zero amount can
// never complete a transfer.
func ExtractAmount(text string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ExtractAddress returns the first address-shaped token in text.
func ExtractAddress(text string) (string, bool) {
	m := addressPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// matchStandaloneAddress reports whether the message is nothing but a valid
// address, i.e. a direct answer to "what's the recipient's address?".
func matchStandaloneAddress(text string) (string, bool) {
	m := standaloneAddressPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// matchStandaloneAmount reports whether the message is nothing but an
// amount, i.e. a direct answer to "how much STX?".
func matchStandaloneAmount(text string) (float64, bool) {
	m := standaloneAmountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
