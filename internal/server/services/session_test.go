package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/server/auth"
	"github.com/dsmirnov/padkeeper/internal/server/config"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	"github.com/dsmirnov/padkeeper/internal/server/session"
)

func newSessionFixture(t *testing.T, mutate func(*config.Config)) (*SessionService, *session.Registry) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	rm := &fakeRepoManager{identities: newFakeIdentitiesRepo(&models.Identity{
		ID: "id-ann", Login: "ann", Email: "ann@example.org",
		PasswordHash: mustHash(t, "s3cret"), Active: true,
		UseLoginAndColor: true, Color: "#336699",
	})}
	registry := session.NewRegistry()
	creds := NewCredentialService(newSQLMockDB(t), rm, nil, cfg)
	return NewSessionService(registry, creds, cfg), registry
}

func TestLogin_Roundtrip(t *testing.T) {
	s, _ := newSessionFixture(t, nil)

	token, err := s.Login(context.Background(), "ann", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	rec, ns, ok := s.WhoAmI(token)
	if !ok || ns != auth.NamespaceUser {
		t.Fatalf("WhoAmI failed: ok=%v ns=%q", ok, ns)
	}
	if rec.Login != "ann" || rec.IdentityID != "id-ann" || rec.Color != "#336699" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	caller := s.Caller(token)
	if caller.Kind != CallerUser || caller.Session.Login != "ann" {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestLogin_BadSecret(t *testing.T) {
	s, _ := newSessionFixture(t, nil)
	if _, err := s.Login(context.Background(), "ann", "wrong"); !errors.Is(err, common.ErrorBadSecret) {
		t.Fatalf("expected common.ErrorBadSecret, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	s, _ := newSessionFixture(t, nil)

	token, err := s.Login(context.Background(), "ann", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	s.Logout(token)
	if _, _, ok := s.WhoAmI(token); ok {
		t.Fatal("token still valid after logout")
	}

	// A second logout, and a logout with garbage, are both no-ops.
	s.Logout(token)
	s.Logout("not-a-token")
}

func TestCaller_AnonymousOnBadToken(t *testing.T) {
	s, _ := newSessionFixture(t, nil)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if c := s.Caller(token); c.Kind != CallerAnonymous {
			t.Fatalf("token %q: expected anonymous caller, got %+v", token, c)
		}
	}
}

func TestAdminLogin_DisjointNamespace(t *testing.T) {
	adminHash := mustHash(t, "tr1ck")
	s, _ := newSessionFixture(t, func(cfg *config.Config) {
		cfg.Admins = []config.AdminAccount{{Login: "root", PasswordHash: adminHash}}
	})
	ctx := context.Background()

	token, err := s.AdminLogin(ctx, "root", "tr1ck")
	if err != nil {
		t.Fatalf("AdminLogin error: %v", err)
	}

	caller := s.Caller(token)
	if caller.Kind != CallerAdmin {
		t.Fatalf("expected admin caller, got %+v", caller)
	}

	// A user session under the same login does not disturb the admin one.
	if _, err := s.Login(ctx, "ann", "s3cret"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if c := s.Caller(token); c.Kind != CallerAdmin {
		t.Fatalf("admin token degraded: %+v", c)
	}
}

func TestAdminLogin_Failures(t *testing.T) {
	s, _ := newSessionFixture(t, func(cfg *config.Config) {
		cfg.Admins = []config.AdminAccount{{Login: "root", PasswordHash: mustHash(t, "tr1ck")}}
	})
	ctx := context.Background()

	if _, err := s.AdminLogin(ctx, "root", "wrong"); !errors.Is(err, common.ErrorBadSecret) {
		t.Fatalf("expected common.ErrorBadSecret, got %v", err)
	}
	if _, err := s.AdminLogin(ctx, "nobody", "tr1ck"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestLogin_SecondLoginRevokesFirstToken(t *testing.T) {
	s, _ := newSessionFixture(t, nil)
	ctx := context.Background()

	first, err := s.Login(ctx, "ann", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	second, err := s.Login(ctx, "ann", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if _, _, ok := s.WhoAmI(first); ok {
		t.Fatal("first token still valid after relogin")
	}
	if _, _, ok := s.WhoAmI(second); !ok {
		t.Fatal("second token invalid")
	}
}
