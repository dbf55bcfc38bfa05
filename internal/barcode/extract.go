// Package barcode extracts a usable barcode from noisy recognized text.
package barcode

// minLength is the shortest digit run accepted as a barcode. Recognizers
// emit prices and partial labels; requiring eight digits filters most of
// that out without checksum validation.
const minLength = 8

// FirstCandidate returns the first fragment that is composed entirely of
// decimal digits and long enough to be a barcode. Order of the input
// decides ties; there is no scoring beyond the predicate.
func FirstCandidate(fragments []string) (string, bool) {
	for _, fragment := range fragments {
		if isCandidate(fragment) {
			return fragment, true
		}
	}
	return "", false
}

func isCandidate(s string) bool {
	return len(s) >= minLength && IsCode(s)
}

// IsCode reports whether s can be used as a barcode directly: digits
// only, non-empty. Typed codes skip the length filter; it exists to
// reject recognizer noise, and short symbologies like UPC-E are typed
// more reliably than they are photographed.
func IsCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
