package authapi

import (
	"encoding/base64"
	"fmt"
	"unicode/utf16"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

// obfuscationKey is shared with the backend. The scheme hides the password
// from casual inspection only; it is not encryption.
const obfuscationKey = "cmpc2024"

// ObfuscatePassword XORs each UTF-16 unit of password with the cycling key and
// base64-encodes the result, the way the backend expects it on the wire.
// Units that do not fit in a byte after the XOR cannot be encoded.
func ObfuscatePassword(password string) (string, error) {
	units := utf16.Encode([]rune(password))
	out := make([]byte, len(units))
	for i, u := range units {
		x := u ^ uint16(obfuscationKey[i%len(obfuscationKey)])
		if x > 0xFF {
			return "", fmt.Errorf("%w: password character %d cannot be encoded", apperrors.ErrInvalidRequest, i)
		}
		out[i] = byte(x)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}
