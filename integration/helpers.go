package integration

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"

	"github.com/hopebrooke/newswire"
	"github.com/hopebrooke/newswire/memstore"
	"github.com/hopebrooke/newswire/sessionauth"
)

// testingLogWriter is an output target for zerolog which will print on the testing logger.
type testingLogWriter struct {
	c *qt.C
}

// Write outputs on the passed bytes on the test logger
func (l *testingLogWriter) Write(p []byte) (n int, err error) {
	str := string(p[0 : len(p)-1]) // drop the final \n
	l.c.Log(str)
	return len(p), nil
}

// A struct to hold the server and its components.
// Provides a few helpers for convenience.
type testContext struct {
	c          *qt.C
	server     *newswire.Server
	testServer *httptest.Server
	store      *memstore.MemStore
}

// newTestContext creates a server instance with its components initialized
// for integration testing. The store is in-memory, so each test starts from
// a pristine state without touching a database.
func newTestContext(c *qt.C) *testContext {
	tc := testContext{c: c}

	w := testingLogWriter{c}
	output := zerolog.ConsoleWriter{Out: &w, NoColor: true}
	logger := zerolog.New(output)

	tc.store = memstore.New()
	sessionService := sessionauth.New("test", logger)

	tc.server = newswire.NewServer(
		&newswire.ServerConfig{Addr: "localhost:8081"},
		logger,
		tc.store,
		sessionService,
	)
	tc.testServer = httptest.NewServer(tc.server)

	return &tc
}

// url returns an url to the test server based on the given path
func (tc *testContext) url(path string) string {
	return tc.testServer.URL + path
}

// prepareServer boots up the server and sets up its teardown for the current test
func (tc *testContext) prepareServer() {
	tc.c.Assert(tc.server.Prepare(), qt.IsNil, qt.Commentf("couldn't prepare the server"))
	tc.c.Cleanup(func() {
		tc.testServer.Close()
	})
}

// createAccount registers an account whose password equals its username.
func (tc *testContext) createAccount(username string) *newswire.Account {
	hash, err := newswire.HashPassword(username)
	tc.c.Assert(err, qt.IsNil)

	account, err := tc.store.CreateAccount(username, hash)
	tc.c.Assert(err, qt.IsNil)

	return account
}

func (tc *testContext) newHTTPClient() *http.Client {
	jar, err := cookiejar.New(nil)
	tc.c.Assert(err, qt.IsNil)

	return &http.Client{
		Jar: jar,
	}
}

// newLoggedInClient creates an account and a client holding a live session
// for it.
func (tc *testContext) newLoggedInClient(username string) *http.Client {
	tc.createAccount(username)

	client := tc.newHTTPClient()
	resp, err := client.PostForm(tc.url("/api/login"), url.Values{
		"username": []string{username},
		"password": []string{username},
	})
	tc.c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	tc.c.Assert(resp.StatusCode, qt.Equals, 200)

	return client
}

func readBody(c *qt.C, resp *http.Response) string {
	b, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	return string(b)
}
