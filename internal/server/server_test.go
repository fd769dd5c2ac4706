package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const document = `
- jobs: [blackbox_icmp, blackbox_ssh]
  labels: {role: util, environment: dev}
  targets: [server1.example.com]
- jobs: [blackbox_ssh]
  targets: [server2]
`

func post(t *testing.T, srv *httptest.Server, query, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/convert"+query, "application/yaml", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	bb, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(bb)
}

func TestServer_Healthy(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/-/healthy")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Convert(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, body := post(t, srv, "", document)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t,
		`{"blackbox_icmp":[{"jobs":["blackbox_icmp"],"labels":{"environment":"dev","role":"util"},"targets":["server1.example.com"]}],`+
			`"blackbox_ssh":[{"jobs":["blackbox_ssh"],"labels":{"environment":"dev","role":"util"},"targets":["server1.example.com"]},`+
			`{"jobs":["blackbox_ssh"],"labels":{},"targets":["server2"]}]}`+"\n",
		body,
	)
}

func TestServer_ConvertSingleJob(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, body := post(t, srv, "?job=blackbox_icmp", document)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t,
		`[{"jobs":["blackbox_icmp"],"labels":{"environment":"dev","role":"util"},"targets":["server1.example.com"]}]`+"\n",
		body,
	)

	resp, _ = post(t, srv, "?job=node_exporter", document)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ConvertYAML(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, body := post(t, srv, "?format=yaml&job=blackbox_ssh", document)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var records []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(body), &records))
	require.Len(t, records, 2)

	resp, _ = post(t, srv, "?format=toml", document)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ConvertInvalid(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, body := post(t, srv, "", "- jobs: {a: b}\n")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "parsing <request>")
}

func TestServer_ConvertTooLarge(t *testing.T) {
	s := New(nil)
	s.MaxBodySize = 16
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, _ := post(t, srv, "", document)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(nil).serve(ctx, lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/-/healthy")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
