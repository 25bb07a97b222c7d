package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// ASS stores colours as &HAABBGGRR&: the RGB channels are swapped to BGR and
// the alpha byte is inverted (00 = fully opaque, FF = fully transparent).
// Getting this wrong renders silently with wrong colours, so the conversion
// lives here and is unit-tested both ways.

// parseHexRGB accepts "#RRGGBB" (case-insensitive, leading # optional).
func parseHexRGB(hex string) (r, g, b uint8, err error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(cleaned) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(cleaned, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// AssColor converts "#RRGGBB" to the 8-hex-digit &HAABBGGRR& style token at
// full opacity. "#FFD700" must always produce "&H0000D7FF".
func AssColor(hex string) (string, error) {
	r, g, b, err := parseHexRGB(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("&H00%02X%02X%02X", b, g, r), nil
}

// AssColorToHex converts an &HAABBGGRR token back to "#RRGGBB", dropping the
// alpha byte. Used to round-trip-test the channel order.
func AssColorToHex(token string) (string, error) {
	cleaned := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(token), "&H"), "&")
	if len(cleaned) != 8 {
		return "", fmt.Errorf("invalid ASS colour token %q", token)
	}
	v, err := strconv.ParseUint(cleaned, 16, 64)
	if err != nil {
		return "", fmt.Errorf("invalid ASS colour token %q: %w", token, err)
	}
	b := uint8(v >> 16)
	g := uint8(v >> 8)
	r := uint8(v)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b), nil
}

// assInlineColor converts "#RRGGBB" to the BBGGRR form used by inline
// {\c&HBBGGRR&} overrides, which carry no alpha byte.
func assInlineColor(hex string) (string, error) {
	r, g, b, err := parseHexRGB(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("&H%02X%02X%02X&", b, g, r), nil
}
