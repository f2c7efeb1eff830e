package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slidecast/internal/pkg/errors"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	sess, err := NewSession(t.TempDir())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(func() { sess.Cleanup(nil) })
	return sess
}

func dataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestFetchInline(t *testing.T) {
	f := NewFetcher(time.Second, 2, nil)
	sess := testSession(t)

	payload := []byte("fake-jpeg-bytes")
	dest := filepath.Join(sess.Dir, "inline.jpg")

	if err := f.Fetch(context.Background(), dataURI("image/jpeg", payload), dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading fetched file: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestFetchInlineMalformed(t *testing.T) {
	f := NewFetcher(time.Second, 2, nil)
	sess := testSession(t)
	dest := filepath.Join(sess.Dir, "bad.bin")

	tests := []string{
		"data:image/png;base64",          // sin cuerpo
		"data:image/png,plain-not-b64",   // sin marcador base64
		"data:image/png;base64,!!!not!!", // base64 inválido
	}

	for _, ref := range tests {
		err := f.Fetch(context.Background(), ref, dest)
		if err == nil {
			t.Errorf("expected decode error for %q", ref)
			continue
		}
		if !errors.IsCode(err, errors.CodeDecode) {
			t.Errorf("expected DECODE_ERROR for %q, got %v", ref, errors.GetCode(err))
		}
	}
}

func TestFetchRemote(t *testing.T) {
	body := []byte("remote-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, 2, nil)
	sess := testSession(t)
	dest := filepath.Join(sess.Dir, "remote.jpg")

	if err := f.Fetch(context.Background(), srv.URL+"/img.jpg", dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	got, _ := os.ReadFile(dest)
	if string(got) != string(body) {
		t.Errorf("got %q, want %q", got, body)
	}
}

func TestFetchRemoteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, 2, nil)
	sess := testSession(t)

	err := f.Fetch(context.Background(), srv.URL+"/missing.jpg", filepath.Join(sess.Dir, "x.jpg"))
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !errors.IsCode(err, errors.CodeNetwork) {
		t.Errorf("expected NETWORK_ERROR, got %v", errors.GetCode(err))
	}
}

func TestFetchRemoteTransportFailure(t *testing.T) {
	f := NewFetcher(200*time.Millisecond, 2, nil)
	sess := testSession(t)

	// Puerto cerrado: falla de transporte, no de status
	err := f.Fetch(context.Background(), "http://127.0.0.1:1/img.jpg", filepath.Join(sess.Dir, "x.jpg"))
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.IsCode(err, errors.CodeNetwork) {
		t.Errorf("expected NETWORK_ERROR, got %v", errors.GetCode(err))
	}
}

func TestFetchImagesPartialFailure(t *testing.T) {
	// 5 referencias, 3 rotas: el job sigue con las 2 buenas
	var served [5][]byte
	for i := range served {
		served[i] = []byte(fmt.Sprintf("image-%d", i))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.jpg":
			w.Write(served[1])
		case "/3.jpg":
			w.Write(served[3])
		default:
			http.Error(w, "broken", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	refs := []string{
		srv.URL + "/0.jpg",
		srv.URL + "/1.jpg",
		srv.URL + "/2.jpg",
		srv.URL + "/3.jpg",
		srv.URL + "/4.jpg",
	}

	f := NewFetcher(time.Second, 3, nil)
	sess := testSession(t)

	assets, err := f.FetchImages(context.Background(), sess, refs)
	if err != nil {
		t.Fatalf("FetchImages failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}

	// El orden de entrada se preserva
	if assets[0].Ref != refs[1] || assets[1].Ref != refs[3] {
		t.Errorf("order not preserved: %v", assets)
	}
	for _, a := range assets {
		if _, err := os.Stat(a.LocalPath); err != nil {
			t.Errorf("asset file missing: %v", err)
		}
	}
}

func TestFetchImagesAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	refs := []string{srv.URL + "/a.jpg", srv.URL + "/b.jpg", srv.URL + "/c.jpg"}

	f := NewFetcher(time.Second, 3, nil)
	sess := testSession(t)

	_, err := f.FetchImages(context.Background(), sess, refs)
	if err == nil {
		t.Fatal("expected error when all fetches fail")
	}
	if !errors.IsCode(err, errors.CodeInsufficientAssets) {
		t.Errorf("expected INSUFFICIENT_ASSETS, got %v", errors.GetCode(err))
	}
}
