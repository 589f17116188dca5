package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/vardhanngg/socket-v/internal/adapters/media"
	"github.com/vardhanngg/socket-v/internal/app"
	"github.com/vardhanngg/socket-v/internal/app/orch"
	"github.com/vardhanngg/socket-v/internal/config"
	"github.com/vardhanngg/socket-v/internal/core"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close() {}

type failingStore struct{}

func (failingStore) Put(context.Context, media.Object) (media.Stored, error) {
	return media.Stored{}, errors.New("disk full")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Mode:        "test",
		Secret:      "test-secret",
		StaticPath:  t.TempDir(),
		CORSOrigins: "https://watch.example.com",
		Media:       config.Media{MaxSize: 1 << 10},
	}
}

func newTestHandler(t *testing.T, store media.Store) (http.Handler, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if store == nil {
		s, err := media.NewLocalStore(t.TempDir(), "/uploads")
		if err != nil {
			t.Fatal(err)
		}
		store = s
	}
	o := orch.New(app.NewRegistry(), app.NewRoomManager(nil), app.SimplePolicy{})
	return Handler(context.Background(), testConfig(t), Deps{Orch: o, Store: store}), o
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(data)
	} else {
		_ = w.WriteField("note", "no file here")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, body *bytes.Buffer, ct string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]string{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Status != "OK" {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), sessionCookie+"=") {
		t.Fatalf("client token cookie not set: %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestUploadSniffsType(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	body, ct := multipartBody(t, "media", "notes.txt", "", []byte("just some plain text"))
	rec, out := upload(t, h, body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(out["fileUrl"], "/uploads/") || !strings.HasSuffix(out["fileUrl"], "-notes.txt") {
		t.Fatalf("fileUrl = %q", out["fileUrl"])
	}
	if !strings.HasPrefix(out["fileType"], "text/plain") {
		t.Fatalf("fileType = %q", out["fileType"])
	}

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, out["fileUrl"], nil))
	if get.Code != http.StatusOK || get.Body.String() != "just some plain text" {
		t.Fatalf("serving upload: %d %q", get.Code, get.Body.String())
	}
}

func TestUploadKeepsDeclaredType(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	body, ct := multipartBody(t, "media", "clip.webm", "video/webm", []byte{0x1a, 0x45, 0xdf, 0xa3})
	rec, out := upload(t, h, body, ct)
	if rec.Code != http.StatusOK || out["fileType"] != "video/webm" {
		t.Fatalf("status = %d fileType = %q", rec.Code, out["fileType"])
	}
}

func TestUploadErrors(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	body, ct := multipartBody(t, "", "", "", nil)
	rec, out := upload(t, h, body, ct)
	if rec.Code != http.StatusBadRequest || out["error"] != "No file uploaded" {
		t.Fatalf("missing file: %d %v", rec.Code, out)
	}

	body, ct = multipartBody(t, "media", "big.bin", "application/zip", bytes.Repeat([]byte("x"), 4<<10))
	rec, _ = upload(t, h, body, ct)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized: %d", rec.Code)
	}

	failing, _ := newTestHandler(t, failingStore{})
	body, ct = multipartBody(t, "media", "a.png", "image/png", []byte("png"))
	rec, out = upload(t, failing, body, ct)
	if rec.Code != http.StatusInternalServerError || out["error"] != "Upload failed" {
		t.Fatalf("store failure: %d %v", rec.Code, out)
	}
}

func TestSessionsAPI(t *testing.T) {
	h, o := newTestHandler(t, nil)
	o.Connect("host", nopSignal{}, func() {})
	code, err := o.CreateSession("host")
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	var list struct {
		Sessions []core.RoomInfo `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Sessions) != 1 || list.Sessions[0].Code != code || list.Sessions[0].MemberCount != 1 {
		t.Fatalf("sessions = %+v", list.Sessions)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+strings.ToLower(string(code)), nil))
	var details core.RoomDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("details: %d %s", rec.Code, rec.Body.String())
	}
	if details.HostID != "host" || len(details.Members) != 1 || !details.Members[0].IsHost {
		t.Fatalf("details = %+v", details)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/NOPE00", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Invalid session code") {
		t.Fatalf("unknown: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORSAllowList(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "https://watch.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://watch.example.com" {
		t.Fatalf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin got %q", got)
	}
}

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.CORSOrigins = "*"
	store, err := media.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	o := orch.New(app.NewRegistry(), app.NewRoomManager(nil), app.SimplePolicy{})
	h := Handler(context.Background(), cfg, Deps{Orch: o, Store: store})

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "https://anywhere.example.net")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.net" {
		t.Fatalf("preflight allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("preflight allow-credentials = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://other.example.org")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://other.example.org" {
		t.Fatalf("allow-origin = %q, never a literal *", got)
	}
}
