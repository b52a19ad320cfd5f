package ldapdir

import (
	"errors"
	"net"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// wrapErr maps a go-ldap failure to a categorized directory error. LDAP result
// codes carry the category; network-level failures without a result code are
// treated as connection errors.
func wrapErr(op, target string, err error) error {
	if err == nil {
		return nil
	}

	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		return directory.NewError(op, categorize(lerr.ResultCode), target, codeMessage(lerr.ResultCode), err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) || isNetworkMessage(err) {
		return directory.NewError(op, directory.ErrorCategoryConnection, target, "directory connection failed", err)
	}

	return directory.NewError(op, directory.ErrorCategoryUnknown, target, err.Error(), err)
}

func categorize(code uint16) directory.ErrorCategory {
	switch code {
	case ldap.LDAPResultNoSuchObject,
		ldap.LDAPResultNoSuchAttribute,
		ldap.LDAPResultUndefinedAttributeType:
		return directory.ErrorCategoryNotFound

	case ldap.LDAPResultEntryAlreadyExists,
		ldap.LDAPResultAttributeOrValueExists:
		return directory.ErrorCategoryConflict

	case ldap.LDAPResultInsufficientAccessRights,
		ldap.LDAPResultUnwillingToPerform,
		ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication:
		return directory.ErrorCategoryPermission

	case ldap.LDAPResultInvalidAttributeSyntax,
		ldap.LDAPResultConstraintViolation,
		ldap.LDAPResultInvalidDNSyntax,
		ldap.LDAPResultFilterError,
		ldap.LDAPResultNamingViolation:
		return directory.ErrorCategoryValidation

	case ldap.LDAPResultServerDown,
		ldap.LDAPResultConnectError,
		ldap.LDAPResultProtocolError,
		ldap.LDAPResultTimeout:
		return directory.ErrorCategoryConnection

	case ldap.LDAPResultBusy,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultAdminLimitExceeded:
		return directory.ErrorCategoryServer

	default:
		return directory.ErrorCategoryUnknown
	}
}

func codeMessage(code uint16) string {
	switch code {
	case ldap.LDAPResultNoSuchObject:
		return "requested object does not exist"
	case ldap.LDAPResultNoSuchAttribute:
		return "requested attribute or value does not exist"
	case ldap.LDAPResultAttributeOrValueExists:
		return "attribute or value already exists"
	case ldap.LDAPResultEntryAlreadyExists:
		return "entry already exists"
	case ldap.LDAPResultInsufficientAccessRights:
		return "insufficient access rights"
	case ldap.LDAPResultUnwillingToPerform:
		return "server is unwilling to perform the operation"
	case ldap.LDAPResultConstraintViolation:
		return "constraint violation"
	case ldap.LDAPResultServerDown:
		return "server is down"
	case ldap.LDAPResultBusy:
		return "server is busy"
	case ldap.LDAPResultUnavailable:
		return "server is unavailable"
	case ldap.LDAPResultTimeLimitExceeded:
		return "time limit exceeded"
	case ldap.LDAPResultSizeLimitExceeded:
		return "size limit exceeded"
	default:
		return ldap.LDAPResultCodeMap[code]
	}
}

func isNetworkMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection", "broken pipe", "network", "timeout", "reset by peer"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
