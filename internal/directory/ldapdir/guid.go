package ldapdir

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
)

// The directory stores objectGUID in mixed-endian byte order: the first three
// groups are little-endian, the last eight bytes keep their order. The helpers
// below convert between that layout and the standard hyphenated form.

const guidBytesLength = 16

// isGUID reports whether s parses as a GUID in any format uuid accepts.
func isGUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// guidBytesToString converts directory objectGUID bytes to the standard
// lowercase hyphenated string form.
func guidBytesToString(b []byte) (string, error) {
	if len(b) != guidBytesLength {
		return "", fmt.Errorf("invalid objectGUID length: expected %d bytes, got %d", guidBytesLength, len(b))
	}

	std := make([]byte, guidBytesLength)
	std[0], std[1], std[2], std[3] = b[3], b[2], b[1], b[0]
	std[4], std[5] = b[5], b[4]
	std[6], std[7] = b[7], b[6]
	copy(std[8:], b[8:])

	u, err := uuid.FromBytes(std)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// guidToBytes converts a GUID string to the directory's mixed-endian layout.
func guidToBytes(s string) ([]byte, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid GUID %q: %w", s, err)
	}

	std := u[:]
	b := make([]byte, guidBytesLength)
	b[0], b[1], b[2], b[3] = std[3], std[2], std[1], std[0]
	b[4], b[5] = std[5], std[4]
	b[6], b[7] = std[7], std[6]
	copy(b[8:], std[8:])
	return b, nil
}

// guidFilter builds an equality filter on objectGUID in the binary form the
// directory requires for GUID searches.
func guidFilter(s string) (string, error) {
	b, err := guidToBytes(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(objectGUID=%s)", ldap.EscapeFilter(string(b))), nil
}

// extractGUID reads the objectGUID of an entry, returning "" when absent or
// malformed. String-valued GUIDs are accepted for fake directories in tests.
func extractGUID(entry *ldap.Entry) string {
	if raw := entry.GetRawAttributeValue("objectGUID"); len(raw) == guidBytesLength {
		if s, err := guidBytesToString(raw); err == nil {
			return s
		}
	}
	if s := entry.GetAttributeValue("objectGUID"); isGUID(s) {
		if u, err := uuid.Parse(s); err == nil {
			return u.String()
		}
	}
	return ""
}
