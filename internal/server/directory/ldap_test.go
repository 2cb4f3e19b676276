package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsmirnov/padkeeper/internal/common"
)

type fakeConn struct {
	bindErrs   map[string]error // keyed by bind DN
	searchRes  *ldap.SearchResult
	searchErr  error
	lastFilter string
	closed     bool
}

func (f *fakeConn) Bind(username, password string) error {
	if err, ok := f.bindErrs[username]; ok {
		return err
	}
	return nil
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.lastFilter = req.Filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchRes, nil
}

func (f *fakeConn) SetTimeout(time.Duration) {}
func (f *fakeConn) Close() error             { f.closed = true; return nil }

func testConfig() Config {
	return Config{
		URL:          "ldap://directory.example.org:389",
		BindDN:       "cn=reader,dc=example,dc=org",
		BindPassword: "readerpw",
		SearchBase:   "ou=people,dc=example,dc=org",
		SearchFilter: "(uid=%s)",
		Attributes: AttributeMap{
			Login:     "uid",
			Email:     "mail",
			Firstname: "givenName",
			Lastname:  "sn",
		},
		Timeout: 5 * time.Second,
	}
}

func entryFor(login string) *ldap.Entry {
	return &ldap.Entry{
		DN: "uid=" + login + ",ou=people,dc=example,dc=org",
		Attributes: []*ldap.EntryAttribute{
			{Name: "uid", Values: []string{login}},
			{Name: "mail", Values: []string{login + "@example.org"}},
			{Name: "givenName", Values: []string{"Alice"}},
			{Name: "sn", Values: []string{"Liddell"}},
		},
	}
}

func newTestClient(conn *fakeConn) *Client {
	c := NewClient(testConfig())
	c.dial = func(Config) (ldapConn, error) { return conn, nil }
	return c
}

func TestBind_Success(t *testing.T) {
	conn := &fakeConn{searchRes: &ldap.SearchResult{Entries: []*ldap.Entry{entryFor("alice")}}}
	c := newTestClient(conn)

	p, err := c.Bind(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Login)
	assert.Equal(t, "alice@example.org", p.Email)
	assert.Equal(t, "Alice", p.Firstname)
	assert.Equal(t, "Liddell", p.Lastname)
	assert.True(t, conn.closed, "connection must be closed")
}

func TestBind_FilterEscapesLogin(t *testing.T) {
	conn := &fakeConn{searchRes: &ldap.SearchResult{Entries: []*ldap.Entry{entryFor("alice")}}}
	c := newTestClient(conn)

	_, err := c.Bind(context.Background(), "ali*ce", "pw")
	require.NoError(t, err)
	assert.Equal(t, `(uid=ali\2ace)`, conn.lastFilter, "wildcard must be escaped before reaching the filter")
}

func TestBind_NoEntry(t *testing.T) {
	conn := &fakeConn{searchRes: &ldap.SearchResult{}}
	c := newTestClient(conn)

	_, err := c.Bind(context.Background(), "ghost", "pw")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBind_InvalidCredentials(t *testing.T) {
	conn := &fakeConn{
		searchRes: &ldap.SearchResult{Entries: []*ldap.Entry{entryFor("alice")}},
		bindErrs: map[string]error{
			"uid=alice,ou=people,dc=example,dc=org": ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials")),
		},
	}
	c := newTestClient(conn)

	_, err := c.Bind(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorBadSecret)
}

func TestBind_DialFailure(t *testing.T) {
	c := NewClient(testConfig())
	c.dial = func(Config) (ldapConn, error) { return nil, errors.New("connection refused") }

	_, err := c.Bind(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrorDirectoryUnavailable)
}

func TestBind_ServiceBindFailure(t *testing.T) {
	conn := &fakeConn{
		bindErrs: map[string]error{
			"cn=reader,dc=example,dc=org": ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("bad service creds")),
		},
	}
	c := newTestClient(conn)

	// A misconfigured service bind is an outage, not a user failure.
	_, err := c.Bind(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrorDirectoryUnavailable)
}

func TestBind_SearchFailure(t *testing.T) {
	conn := &fakeConn{searchErr: ldap.NewError(ldap.LDAPResultBusy, errors.New("busy"))}
	c := newTestClient(conn)

	_, err := c.Bind(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrorDirectoryUnavailable)
}

func TestBind_CancelledContext(t *testing.T) {
	conn := &fakeConn{searchRes: &ldap.SearchResult{Entries: []*ldap.Entry{entryFor("alice")}}}
	c := newTestClient(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Bind(ctx, "alice", "pw")
	require.ErrorIs(t, err, common.ErrorDirectoryUnavailable)
}
