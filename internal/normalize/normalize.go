package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Text trims a chat message. An empty result means the message must not be sent.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// DisplayName collapses inner runs of whitespace and trims the ends.
func DisplayName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
