package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStore_SaveLoadClear(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if creds := store.Load(); creds != nil {
		t.Errorf("Load on empty store should return nil, got %+v", creds)
	}

	want := &Credentials{Token: "tok-123", Username: "alice", Remember: true}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := store.Load()
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.Token != want.Token || got.Username != want.Username || !got.Remember {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if creds := store.Load(); creds != nil {
		t.Errorf("Load after Clear should return nil, got %+v", creds)
	}

	// Clearing twice must not error
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	if err := store.Save(&Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, credentialsFileName))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials file mode = %o, want 0600", perm)
	}
}

func TestStore_IgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)
	os.WriteFile(filepath.Join(dir, credentialsFileName), []byte("{not json"), 0600)

	if creds := store.Load(); creds != nil {
		t.Errorf("Load on corrupt file should return nil, got %+v", creds)
	}
}

// testEnv builds a client and session against a stub server.
func testEnv(t *testing.T, handler http.Handler) (*Client, *Session, *Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return c, NewSession(store, c), store
}

func TestSession_BootstrapWithoutCredentials(t *testing.T) {
	var probes int
	c, sess, _ := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
	}))
	_ = c

	if sess.State() != StateLoading {
		t.Errorf("initial state = %v, want loading", sess.State())
	}

	if err := sess.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if sess.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", sess.State())
	}
	if sess.IsAuthenticated() {
		t.Error("IsAuthenticated should be false with no credentials")
	}
	if probes != 0 {
		t.Errorf("no request should be made without stored credentials, got %d", probes)
	}
}

func TestSession_BootstrapValidToken(t *testing.T) {
	var probes int
	var gotAuth string
	c, sess, store := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		probes++
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":0,"message":"ok","data":{"id":7,"username":"alice","role":"admin"}}`))
	}))
	_ = c

	store.Save(&Credentials{Token: "tok-abc", Username: "alice", Remember: true})

	if err := sess.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !sess.IsAuthenticated() {
		t.Fatal("session should be authenticated after a successful probe")
	}
	if sess.State() != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", sess.State())
	}
	if probes != 1 {
		t.Errorf("probe count = %d, want exactly 1", probes)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want bearer token from store", gotAuth)
	}

	user := sess.User()
	if user == nil || user.Username != "alice" || user.Role != "admin" {
		t.Errorf("identity should come from the server response, got %+v", user)
	}
}

func TestSession_BootstrapExpiredTokenClearsSession(t *testing.T) {
	c, sess, store := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"message":"invalid or expired token"}`))
	}))
	_ = c

	store.Save(&Credentials{Token: "stale", Remember: true})

	if err := sess.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap should settle, not fail, on 401: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("session must not be authenticated after a 401 probe")
	}
	if creds := store.Load(); creds != nil {
		t.Errorf("stored credentials should be cleared after 401, got %+v", creds)
	}
}

func TestSession_BootstrapServerDownDiscardsToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	store, _ := NewStore(t.TempDir())
	sess := NewSession(store, c)
	store.Save(&Credentials{Token: "tok", Username: "alice", Remember: true})

	err := sess.Bootstrap()
	if err == nil {
		t.Fatal("Bootstrap should surface the transport error")
	}
	if sess.IsAuthenticated() {
		t.Error("session must not claim authentication when the probe never ran")
	}
	// The startup probe decides in one shot: a failed probe discards
	// the token no matter why it failed.
	if creds := store.Load(); creds != nil {
		t.Errorf("token should be discarded after a failed probe, got %+v", creds)
	}
	// The remembered username is not the token; it survives.
	if got := store.RememberedUsername(); got != "alice" {
		t.Errorf("RememberedUsername = %q, want %q", got, "alice")
	}
}

func TestSession_UnauthorizedClearsExactlyOnce(t *testing.T) {
	c, sess, store := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"message":"invalid or expired token"}`))
	}))

	store.Save(&Credentials{Token: "tok", Remember: true})
	c.SetToken("tok")

	// Hammer the API concurrently; every call sees a 401 and triggers
	// the invalidation hook, which must collapse to a single teardown.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ListTags()
		}()
	}
	wg.Wait()

	if sess.IsAuthenticated() {
		t.Error("session should be invalidated after 401s")
	}
	if creds := store.Load(); creds != nil {
		t.Errorf("credentials should be cleared, got %+v", creds)
	}

	// The teardown must have consumed its one-shot guard: plant fresh
	// credentials and invalidate again; a second teardown would delete
	// them, proving the guard failed.
	if err := store.Save(&Credentials{Token: "fresh", Remember: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess.Invalidate()
	if creds := store.Load(); creds == nil {
		t.Error("repeated Invalidate ran its side effects a second time")
	}
}

func TestSession_EstablishRemember(t *testing.T) {
	c, sess, store := testEnv(t, http.NotFoundHandler())
	_ = c

	user := testUser("bob", "user")
	if err := sess.Establish("tok-1", user, true); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if !sess.IsAuthenticated() {
		t.Error("session should be authenticated after Establish")
	}
	creds := store.Load()
	if creds == nil || creds.Token != "tok-1" || creds.Username != "bob" {
		t.Errorf("persisted credentials = %+v", creds)
	}

	// Without remember the file is not written
	if err := sess.Establish("tok-2", user, false); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if creds := store.Load(); creds != nil {
		t.Errorf("remember=false should leave no file, got %+v", creds)
	}
}

func TestSession_Logout(t *testing.T) {
	c, sess, store := testEnv(t, http.NotFoundHandler())
	_ = c

	sess.Establish("tok", testUser("carol", "user"), true)
	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("session should not be authenticated after logout")
	}
	if sess.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", sess.State())
	}
	if creds := store.Load(); creds != nil {
		t.Errorf("token should be gone after logout, got %+v", creds)
	}
	// Remembered sessions keep the username for the next login prompt
	if got := store.RememberedUsername(); got != "carol" {
		t.Errorf("RememberedUsername = %q, want %q", got, "carol")
	}
}

func TestSession_LogoutWithoutRememberRemovesFile(t *testing.T) {
	c, sess, store := testEnv(t, http.NotFoundHandler())
	_ = c

	// remember=false leaves no file behind in the first place; logout
	// after a remembered session with no username also removes it.
	store.Save(&Credentials{Token: "tok", Remember: false, Username: "dave"})
	sess.Establish("tok", testUser("dave", "user"), false)
	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := store.RememberedUsername(); got != "" {
		t.Errorf("RememberedUsername = %q, want empty", got)
	}
}
