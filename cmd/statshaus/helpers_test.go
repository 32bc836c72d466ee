package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/statshaus/internal/stubserver"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// executeCommand runs rootCmd with args and returns what it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// isolateEnv keeps the user's config file and STATSHAUS_* variables out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"STATSHAUS_USERNAME", "STATSHAUS_PASSWORD", "STATSHAUS_ENDPOINT"} {
		t.Setenv(key, "")
	}
}

func newStub(t *testing.T) (*stubserver.Server, string) {
	t.Helper()
	stub := stubserver.NewServer(stubserver.Config{
		Username: "demo",
		Password: "secret",
		Seed:     7,
		Users:    []string{"alice", "bob", "carol"},
		Streams:  []string{"main", "side"},
	})
	ts := httptest.NewServer(stub.Handler())
	t.Cleanup(ts.Close)
	return stub, ts.URL + stubserver.DataPath
}
