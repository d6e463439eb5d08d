package reputation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf16"

	"omnirep/internal/domain"
)

// ComponentsHash returns a short non-cryptographic checksum of the
// components, used for display-level "verification" only. It depends on
// component values alone so identical inputs always hash identically.
func ComponentsHash(c domain.Components) string {
	data, err := json.Marshal(c)
	if err != nil {
		// Components holds only ints; Marshal cannot fail.
		return ""
	}
	return stringHash(string(data))
}

// stringHash is the 31-multiplier rolling hash over UTF-16 code units with
// 32-bit wraparound, rendered as the hex of its absolute value.
func stringHash(s string) string {
	return strconv.FormatInt(rollingHash(s), 16)
}

// paddedStringHash renders stringHash as 0x plus at least eight hex digits.
func paddedStringHash(s string) string {
	return fmt.Sprintf("0x%08x", rollingHash(s))
}

func rollingHash(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
