package ldapdir

import (
	"strings"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
)

// isSID reports whether s looks like a string-form security identifier.
func isSID(s string) bool {
	return strings.HasPrefix(s, "S-1-") && len(s) > 4
}

// extractSID reads the objectSid of an entry as an S-1-... string, returning
// "" when absent. The directory stores SIDs in binary form; string values are
// accepted for fake directories in tests.
func extractSID(entry *ldap.Entry) string {
	if raw := entry.GetRawAttributeValue("objectSid"); len(raw) > 0 {
		// Decode panics on malformed input; treat that as an absent SID.
		sid := func() (s string) {
			defer func() {
				if recover() != nil {
					s = ""
				}
			}()
			return objectsid.Decode(raw).String()
		}()
		if sid != "" {
			return sid
		}
	}
	if s := entry.GetAttributeValue("objectSid"); isSID(s) {
		return s
	}
	return ""
}
