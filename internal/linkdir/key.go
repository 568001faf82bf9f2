package linkdir

import (
	"fmt"
	"html"
	"strings"
)

// Key is the canonical storage key for a link: a leading slash followed by
// the user-supplied slug with any extra leading slashes stripped. The empty
// input maps to the root key "/".
type Key string

// NormalizeKey canonicalizes a raw link token into a Key. It is total over
// any input string.
func NormalizeKey(raw string) Key {
	trimmed := strings.TrimLeft(raw, "/")
	if trimmed == "" {
		return Key("/")
	}

	return Key("/" + trimmed)
}

// Trimmed returns the key without its leading slash.
func (k Key) Trimmed() string {
	return strings.TrimPrefix(string(k), "/")
}

// Relative returns the key as a site-relative path.
func (k Key) Relative() string {
	return string(k)
}

// Full returns the absolute form of the key under the given site origin.
func (k Key) Full(base string) string {
	return strings.TrimSuffix(base, "/") + k.Relative()
}

// Anchor renders an HTML anchor referencing the relative path with the full
// URL as visible text. Used when composing user-facing messages, never for
// storage.
func (k Key) Anchor(base string) string {
	return fmt.Sprintf("<a href=%q>%s</a>", k.Relative(), html.EscapeString(k.Full(base)))
}
