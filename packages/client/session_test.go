package client

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))

	state, err := store.Load()
	if err != nil || state != nil {
		t.Fatalf("empty store: state=%v err=%v", state, err)
	}

	expires := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	if err := store.Save(&SessionState{Username: "admin", Token: "abc", RefreshToken: "def", ExpiresAt: expires}); err != nil {
		t.Fatal(err)
	}
	state, err = store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if state.Token != "abc" || state.RefreshToken != "def" || !state.ExpiresAt.Equal(expires) {
		t.Errorf("loaded %+v", state)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewMemoryStore()
	session, err := NewSession(store)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	session.SetClock(func() time.Time { return now })

	if session.Valid() || session.Token() != "" {
		t.Fatal("new session should be signed out")
	}

	session.Set(SessionState{Token: "abc", ExpiresAt: now.Add(time.Minute)})
	if !session.Valid() || session.Token() != "abc" {
		t.Fatal("session should be valid before expiry")
	}
	if expired, _ := session.CheckExpiry(); expired {
		t.Error("CheckExpiry cleared a valid session")
	}

	now = now.Add(2 * time.Minute)
	if session.Token() != "" {
		t.Error("expired token still returned")
	}
	expired, err := session.CheckExpiry()
	if err != nil || !expired {
		t.Fatalf("CheckExpiry = %v, %v", expired, err)
	}
	if state, _ := store.Load(); state != nil {
		t.Errorf("store still holds %+v", state)
	}
	if expired, _ := session.CheckExpiry(); expired {
		t.Error("signed out session reported as expiring twice")
	}
}

func TestNewSessionLoadsStoredState(t *testing.T) {
	store := NewMemoryStore()
	store.Save(&SessionState{Username: "admin", Token: "abc", ExpiresAt: time.Now().Add(time.Hour)})

	session, err := NewSession(store)
	if err != nil {
		t.Fatal(err)
	}
	if session.State().Username != "admin" || !session.Valid() {
		t.Errorf("state = %+v", session.State())
	}
}

func TestWatchLogsOutOnExpiry(t *testing.T) {
	session, _ := NewSession(nil)
	session.Set(SessionState{Token: "abc", ExpiresAt: time.Now().Add(-time.Second)})

	expired := make(chan struct{}, 1)
	watcher := session.Watch(5*time.Millisecond, func() { expired <- struct{}{} })
	if err := watcher.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("onExpire was not called")
	}
	if session.State().Token != "" {
		t.Error("session not cleared")
	}
}
