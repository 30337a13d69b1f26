package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	domain "foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func newSession(sid, uid string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID: sid, UserPK: 7, UserID: uid, Email: "p@example.com", Name: "P",
		Role: user.RolePartner, IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	}
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	s := newSession("sid-1", "uid-1")
	if err := store.Save(ctx, s, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("session:sid-1"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
	if ok, _ := mr.SIsMember("session:user:uid-1", "sid-1"); !ok {
		t.Fatal("sid not indexed under user")
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "uid-1" || got.Role != user.RolePartner || got.UserPK != 7 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("want ErrExpired after delete, got %v", err)
	}
	// deleting twice is a no-op
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete again: %v", err)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, newSession("sid-1", "uid-1"), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
}

func TestRedisStore_RefreshUser(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b"} {
		if err := store.Save(ctx, newSession(sid, "uid-1"), time.Hour); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// stale index entry with no snapshot behind it
	mr.SAdd("session:user:uid-1", "gone")

	approved := true
	u := &user.User{UserID: "uid-1", Email: "p@example.com", Name: "Renamed", Role: user.RolePartner, Approved: &approved}
	if err := store.RefreshUser(ctx, u); err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	for _, sid := range []string{"a", "b"} {
		got, err := store.Get(ctx, sid)
		if err != nil {
			t.Fatalf("Get %s: %v", sid, err)
		}
		if got.ApprovalState() != user.ApprovalApproved || got.Name != "Renamed" {
			t.Fatalf("snapshot %s not refreshed: %+v", sid, got)
		}
		if ttl := mr.TTL("session:" + sid); ttl <= 0 {
			t.Fatalf("ttl lost on refresh for %s", sid)
		}
	}
	if ok, _ := mr.SIsMember("session:user:uid-1", "gone"); ok {
		t.Fatal("stale sid should be pruned")
	}
	if mr.Exists("session:gone") {
		t.Fatal("refresh must not resurrect missing sessions")
	}
}

func TestRedisStore_InvalidateUser(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	_ = store.Save(ctx, newSession("a", "uid-1"), time.Hour)
	_ = store.Save(ctx, newSession("b", "uid-1"), time.Hour)
	_ = store.Save(ctx, newSession("c", "uid-2"), time.Hour)

	if err := store.InvalidateUser(ctx, "uid-1"); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}
	if mr.Exists("session:a") || mr.Exists("session:b") || mr.Exists("session:user:uid-1") {
		t.Fatal("uid-1 sessions should be gone")
	}
	if !mr.Exists("session:c") {
		t.Fatal("other users' sessions must survive")
	}
}

func TestJWTTokens_IssueParse(t *testing.T) {
	tokens := NewJWTTokens("0123456789abcdef0123456789abcdef", "foodrescue")
	s := newSession("sid-9", "uid-9")

	tok, err := tokens.Issue(s)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sid, err := tokens.Parse(tok)
	if err != nil || sid != "sid-9" {
		t.Fatalf("Parse: sid=%q err=%v", sid, err)
	}

	other := NewJWTTokens("another-secret-another-secret!!", "foodrescue")
	if _, err := other.Parse(tok); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("wrong secret: want ErrUnauthenticated, got %v", err)
	}
	if _, err := tokens.Parse("not-a-jwt"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("garbage: want ErrUnauthenticated, got %v", err)
	}

	expired := newSession("sid-x", "uid-x")
	expired.IssuedAt = time.Now().Add(-2 * time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	old, _ := tokens.Issue(expired)
	if _, err := tokens.Parse(old); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expired: want ErrExpired, got %v", err)
	}
}
