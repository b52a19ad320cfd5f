// Package ldapdir implements the directory service contract over LDAP against
// the tenant's hosted directory. A single bound connection is established
// lazily on first need and reused; a connection-category failure drops it so
// the next call re-dials.
package ldapdir

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// Config holds connection and schema settings for the LDAP directory adapter.
type Config struct {
	URL    string // ldap:// or ldaps:// URL of the directory service
	BaseDN string

	// Simple bind credentials. Leave BindDN empty for anonymous bind.
	BindDN       string
	BindPassword string

	// Kerberos settings. A non-empty realm selects GSSAPI authentication.
	KerberosRealm  string
	KerberosKeytab string
	KerberosCCache string
	KerberosConfig string // path to krb5.conf
	KerberosSPN    string // explicit SPN override

	// TLS settings.
	StartTLS           bool `default:"true"`
	InsecureSkipVerify bool

	Timeout  time.Duration `default:"30s"`
	PageSize uint32        `default:"500"`

	// Attributes carrying mailbox folder descriptors and calendar folder ACL
	// entries. The hosting provider's schema keeps both on the mailbox entry.
	FolderAttr      string `default:"folderBinding"`
	CalendarACLAttr string `default:"calendarACL"`
}

// Client is the LDAP-backed implementation of directory.Directory.
type Client struct {
	cfg Config
	log zerolog.Logger

	mu   sync.Mutex
	conn *ldap.Conn
}

var _ directory.Directory = (*Client)(nil)

// New validates the configuration, applies defaults, and returns an
// unconnected client. No connection is attempted until first use.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("directory URL is required")
	}
	if cfg.BaseDN == "" {
		return nil, fmt.Errorf("directory base DN is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid directory URL %q: %w", cfg.URL, err)
	}
	return &Client{cfg: cfg, log: log.With().Str("component", "ldapdir").Logger()}, nil
}

// Connect establishes the directory session if not already established.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.ensure(ctx)
	return err
}

// Close tears down the connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// ensure returns a live bound connection, dialing and binding on first use or
// after a previous connection was dropped.
func (c *Client) ensure(ctx context.Context) (*ldap.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosing() {
		return c.conn, nil
	}
	c.conn = nil

	start := time.Now()
	conn, err := c.dial()
	if err != nil {
		c.log.Error().Err(err).Str("url", c.cfg.URL).Msg("failed to dial directory")
		return nil, directory.NewError("connect", directory.ErrorCategoryConnection, "", "cannot reach directory service", err)
	}

	if err := c.authenticate(conn); err != nil {
		conn.Close()
		c.log.Error().Err(err).Str("bind_dn", c.cfg.BindDN).Msg("directory bind failed")
		return nil, directory.NewError("bind", directory.ErrorCategoryConnection, "", "directory authentication failed", err)
	}

	c.log.Debug().
		Str("url", c.cfg.URL).
		Dur("elapsed", time.Since(start)).
		Msg("directory session established")

	c.conn = conn
	return c.conn, nil
}

func (c *Client) dial() (*ldap.Conn, error) {
	tlsCfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.cfg.InsecureSkipVerify,
	}

	conn, err := ldap.DialURL(c.cfg.URL,
		ldap.DialWithTLSConfig(tlsCfg),
		ldap.DialWithDialer(&net.Dialer{Timeout: c.cfg.Timeout}),
	)
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(c.cfg.Timeout)

	if c.cfg.StartTLS && strings.HasPrefix(c.cfg.URL, "ldap://") {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("StartTLS failed: %w", err)
		}
	}
	return conn, nil
}

// authenticate binds the connection using Kerberos when a realm is configured,
// simple bind when credentials are present, and anonymously otherwise.
func (c *Client) authenticate(conn *ldap.Conn) error {
	if c.cfg.KerberosRealm != "" {
		return c.kerberosBind(conn)
	}
	if c.cfg.BindDN != "" {
		return conn.Bind(c.cfg.BindDN, c.cfg.BindPassword)
	}
	return conn.UnauthenticatedBind("")
}

// drop discards the cached connection after a connection-category failure so
// the next operation re-dials.
func (c *Client) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// search runs one search request, mapping failures to categorized directory
// errors. A size-limit-exceeded result is not a failure: the partial entries
// collected up to the cap are returned.
func (c *Client) search(ctx context.Context, req *ldap.SearchRequest) ([]*ldap.Entry, error) {
	conn, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) && res != nil {
			return res.Entries, nil
		}
		werr := wrapErr("search", req.BaseDN, err)
		if directory.IsConnection(werr) {
			c.drop()
		}
		return nil, werr
	}
	return res.Entries, nil
}

// searchPaged runs an unbounded search with paging, for full group membership
// fetches.
func (c *Client) searchPaged(ctx context.Context, req *ldap.SearchRequest) ([]*ldap.Entry, error) {
	conn, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}

	res, err := conn.SearchWithPaging(req, c.cfg.PageSize)
	if err != nil {
		werr := wrapErr("search", req.BaseDN, err)
		if directory.IsConnection(werr) {
			c.drop()
		}
		return nil, werr
	}
	return res.Entries, nil
}

// modify runs one modify request with the same error mapping as search.
func (c *Client) modify(ctx context.Context, op string, req *ldap.ModifyRequest) error {
	conn, err := c.ensure(ctx)
	if err != nil {
		return err
	}

	if err := conn.Modify(req); err != nil {
		werr := wrapErr(op, req.DN, err)
		if directory.IsConnection(werr) {
			c.drop()
		}
		return werr
	}
	return nil
}
