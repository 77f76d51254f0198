package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/chapters"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	return out.String(), err
}

func TestNumberCommand(t *testing.T) {
	out, err := run(t, "number", "Chapter 12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.5\n", out)

	out, err = run(t, "number", "no digits here", "https://x/manga/abc")
	require.NoError(t, err)
	assert.Equal(t, "-1\n", out)
}

func TestChaptersCommandJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="/m/2">Chapter 2</a><a href="/about">About</a><a href="/m/1">Chapter 1</a>`))
	}))
	defer srv.Close()

	out, err := run(t, "--ignore-config", "chapters", srv.URL+"/m", "--json", "--sort")
	require.NoError(t, err)

	var got []chapters.Chapter
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, srv.URL+"/m/1", got[0].URL)
	assert.Equal(t, "1", got[0].Label)
	assert.Equal(t, srv.URL+"/m/2", got[1].URL)
}

func TestChaptersCommandNothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p>nothing</p>`))
	}))
	defer srv.Close()

	_, err := run(t, "--ignore-config", "chapters", srv.URL, "--json=false", "--sort=false")
	assert.ErrorContains(t, err, "no chapters found")
}
