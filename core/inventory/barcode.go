package inventory

// ValidBarcode reports whether code is a well-formed EAN-8 or EAN-13
// barcode with a correct check digit.
func ValidBarcode(code string) bool {
	if len(code) != 8 && len(code) != 13 {
		return false
	}

	sum := 0
	for i, r := range code[:len(code)-1] {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')

		// EAN weights alternate 1 and 3; the 3 falls on positions with
		// odd distance from the check digit.
		if (len(code)-i)%2 == 0 {
			digit *= 3
		}
		sum += digit
	}

	last := code[len(code)-1]
	if last < '0' || last > '9' {
		return false
	}
	check := (10 - sum%10) % 10
	return int(last-'0') == check
}
