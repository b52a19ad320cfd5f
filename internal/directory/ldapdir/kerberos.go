package ldapdir

import (
	"fmt"
	"net/url"
	"os"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// kerberosBind performs a GSSAPI bind on the connection. Credential sources
// are tried in order: explicit credential cache, explicit keytab, password.
func (c *Client) kerberosBind(conn *ldap.Conn) error {
	gssapiClient, err := c.newGSSAPIClient()
	if err != nil {
		return fmt.Errorf("create GSSAPI client: %w", err)
	}
	defer func() {
		_ = gssapiClient.DeleteSecContext()
	}()

	spn, err := c.servicePrincipal()
	if err != nil {
		return err
	}

	if err := conn.GSSAPIBind(gssapiClient, spn, ""); err != nil {
		return fmt.Errorf("GSSAPI bind failed: %w", err)
	}
	return nil
}

func (c *Client) newGSSAPIClient() (ldap.GSSAPIClient, error) {
	krb5conf := c.cfg.KerberosConfig
	if krb5conf == "" {
		krb5conf = "/etc/krb5.conf"
	}
	if !fileExists(krb5conf) {
		return nil, fmt.Errorf("kerberos configuration file not found at %s", krb5conf)
	}

	if c.cfg.KerberosCCache != "" && fileExists(c.cfg.KerberosCCache) {
		return gssapi.NewClientFromCCache(c.cfg.KerberosCCache, krb5conf, krb5client.DisablePAFXFAST(true))
	}

	if c.cfg.KerberosKeytab != "" && fileExists(c.cfg.KerberosKeytab) {
		return gssapi.NewClientWithKeytab(c.cfg.BindDN, c.cfg.KerberosRealm, c.cfg.KerberosKeytab, krb5conf, krb5client.DisablePAFXFAST(true))
	}

	if c.cfg.BindDN != "" && c.cfg.BindPassword != "" {
		return gssapi.NewClientWithPassword(c.cfg.BindDN, c.cfg.KerberosRealm, c.cfg.BindPassword, krb5conf, krb5client.DisablePAFXFAST(true))
	}

	return nil, fmt.Errorf("no suitable credentials for kerberos authentication")
}

// servicePrincipal builds the ldap/<host> SPN from the configured URL unless
// an explicit override is set.
func (c *Client) servicePrincipal() (string, error) {
	if c.cfg.KerberosSPN != "" {
		return c.cfg.KerberosSPN, nil
	}

	parsed, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid directory URL: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname in directory URL %q", c.cfg.URL)
	}
	return fmt.Sprintf("ldap/%s", host), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
