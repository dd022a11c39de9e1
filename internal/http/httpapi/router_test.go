package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/imagegen"
	"server/internal/infra"
)

type fixedEditor struct {
	image []byte
}

func (f *fixedEditor) Edit(ctx context.Context, req imagegen.EditRequest) ([]byte, error) {
	return f.image, nil
}

func (f *fixedEditor) NewStream(req imagegen.EditRequest, count int, policy imagegen.RetryPolicy) (imagegen.Stream, error) {
	return &fixedStream{image: f.image, count: count}, nil
}

type fixedStream struct {
	image []byte
	count int
	next  int
}

func (s *fixedStream) Next(ctx context.Context) (imagegen.Attempt, bool) {
	if s.next >= s.count {
		return imagegen.Attempt{}, false
	}
	a := imagegen.Attempt{Index: s.next, Image: s.image}
	s.next++
	return a, true
}

func newTestServer(t *testing.T) (*httptest.Server, *fixedEditor) {
	t.Helper()
	cfg := &infra.Config{
		MaxStreamCount:  6,
		RetryDelay:      time.Second,
		RateLimitPerMin: 100,
	}
	editor := &fixedEditor{image: []byte("generated")}
	app := handlers.NewApp(cfg, zerolog.Nop(), editor)
	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)
	return srv, editor
}

func postImage(t *testing.T, url string, fields map[string]string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="face.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("raw-upload")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestRouterHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %v err = %v", body, err)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRouterHairstyle(t *testing.T) {
	srv, editor := newTestServer(t)

	resp := postImage(t, srv.URL+"/hairstyle", map[string]string{"prompt": "bob cut"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || !bytes.Equal(data, editor.image) {
		t.Errorf("body mismatch: %v", err)
	}
}

func TestRouterStreamOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postImage(t, srv.URL+"/hairstyles/stream", map[string]string{"count": "2"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/jsonl" {
		t.Errorf("Content-Type = %q", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, line := range lines {
		var rec struct {
			Index       int    `json:"index"`
			ImageBase64 string `json:"image_base64"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i, err)
		}
		if rec.Index != i || rec.ImageBase64 == "" {
			t.Errorf("line %d = %+v", i, rec)
		}
	}
}
