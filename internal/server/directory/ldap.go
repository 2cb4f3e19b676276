package directory

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/dsmirnov/padkeeper/internal/common"
)

// ldapConn is the slice of *ldap.Conn the client uses, kept narrow so tests
// can substitute a fake connection.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	SetTimeout(d time.Duration)
	Close() error
}

// Client is the LDAP implementation of Verifier.
type Client struct {
	cfg Config

	// dial is a test seam; production clients use dialLDAP.
	dial func(cfg Config) (ldapConn, error)
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, dial: dialLDAP}
}

func dialLDAP(cfg Config) (ldapConn, error) {
	conn, err := ldap.DialURL(cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Bind locates the login's entry via the configured search and then binds
// as that entry with the supplied secret. Directory-reported "no such
// identity" and "invalid credentials" map to the matching sentinel errors;
// everything else, including dial failure and timeout, maps to
// common.ErrorDirectoryUnavailable so an outage never looks like a denial.
func (c *Client) Bind(ctx context.Context, login, secret string) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDirectoryUnavailable, err)
	}

	conn, err := c.dial(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", common.ErrorDirectoryUnavailable, err)
	}
	defer conn.Close()

	if c.cfg.Timeout > 0 {
		conn.SetTimeout(c.cfg.Timeout)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && (c.cfg.Timeout == 0 || remaining < c.cfg.Timeout) {
			conn.SetTimeout(remaining)
		}
	}

	if c.cfg.BindDN != "" {
		if err := conn.Bind(c.cfg.BindDN, c.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("%w: service bind: %v", common.ErrorDirectoryUnavailable, err)
		}
	}

	attrs := c.cfg.Attributes
	filter := fmt.Sprintf(c.cfg.SearchFilter, ldap.EscapeFilter(login))
	req := ldap.NewSearchRequest(
		c.cfg.SearchBase,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 2, 0, false,
		filter,
		[]string{attrs.Login, attrs.Email, attrs.Firstname, attrs.Lastname},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: search: %v", common.ErrorDirectoryUnavailable, err)
	}
	if len(res.Entries) != 1 {
		return nil, common.ErrorNotFound
	}
	entry := res.Entries[0]

	if err := conn.Bind(entry.DN, secret); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, common.ErrorBadSecret
		}
		return nil, fmt.Errorf("%w: user bind: %v", common.ErrorDirectoryUnavailable, err)
	}

	profile := &Profile{
		Login:     entry.GetAttributeValue(attrs.Login),
		Email:     entry.GetAttributeValue(attrs.Email),
		Firstname: entry.GetAttributeValue(attrs.Firstname),
		Lastname:  entry.GetAttributeValue(attrs.Lastname),
	}
	if profile.Login == "" {
		profile.Login = login
	}
	return profile, nil
}
