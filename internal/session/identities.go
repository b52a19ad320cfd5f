package session

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	identitySeparators = regexp.MustCompile(`[,;\s]+`)
	aliasPattern       = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
)

// ParseIdentities splits bulk free text into identity tokens. Tokens are
// separated by commas, semicolons, or any whitespace. A token is kept if it
// contains "@" (email or UPN, not validated further) or is a bare alias of at
// least three characters starting alphanumeric with the rest limited to
// alphanumerics, ".", "_" and "-". Invalid tokens are dropped silently;
// callers surface a single "no valid identities" condition when nothing
// survives. The result is deduplicated, first occurrence order preserved.
func ParseIdentities(freeText string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, token := range identitySeparators.Split(freeText, -1) {
		if token == "" || !validIdentityToken(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func validIdentityToken(token string) bool {
	if strings.Contains(token, "@") {
		return true
	}
	return utf8.RuneCountInString(token) >= 3 && aliasPattern.MatchString(token)
}
