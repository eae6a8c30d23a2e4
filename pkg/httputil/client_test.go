package httputil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSingletons(t *testing.T) {
	if FastClient() != FastClient() {
		t.Error("FastClient must return the shared instance")
	}
	if MediumClient() != MediumClient() {
		t.Error("MediumClient must return the shared instance")
	}
	if FastClient() == MediumClient() {
		t.Error("tiers must be distinct clients")
	}
}

func TestClientTimeouts(t *testing.T) {
	if got := FastClient().Timeout; got != 5*time.Second {
		t.Errorf("fast timeout = %v, want 5s", got)
	}
	if got := MediumClient().Timeout; got != 15*time.Second {
		t.Errorf("medium timeout = %v, want 15s", got)
	}
}

func TestClientConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := MediumClient()
	for i := range 10 {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		DrainAndClose(resp.Body)
	}
}

func TestReadErrorBodyTruncates(t *testing.T) {
	large := strings.Repeat("error details ", 100000)
	got, err := ReadErrorBody(strings.NewReader(large))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 1024*1024 {
		t.Errorf("ReadErrorBody returned %d bytes, want <= 1MB", len(got))
	}
}

type trackingReader struct {
	io.Reader
	fullyRead bool
}

func (r *trackingReader) Read(p []byte) (n int, err error) {
	n, err = r.Reader.Read(p)
	if err == io.EOF {
		r.fullyRead = true
	}
	return
}

func TestDrainAndClose(t *testing.T) {
	r := &trackingReader{Reader: bytes.NewReader([]byte("test data"))}
	DrainAndClose(io.NopCloser(r))
	if !r.fullyRead {
		t.Error("DrainAndClose should fully drain the body")
	}

	DrainAndClose(nil) // must not panic
}
