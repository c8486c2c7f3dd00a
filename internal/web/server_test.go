package web

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
	"github.com/kozaktomas/faceledger/internal/detect"
	"github.com/kozaktomas/faceledger/internal/gallery"
	"github.com/kozaktomas/faceledger/internal/ledger"
	"github.com/kozaktomas/faceledger/internal/registry"
)

// wholeImageLocator treats the whole image as the face.
type wholeImageLocator struct{}

func (wholeImageLocator) Locate(src image.Image) (*image.Gray, image.Rectangle, error) {
	return detect.Normalize(src, src.Bounds(), 20), src.Bounds(), nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	svc := attendance.New(
		wholeImageLocator{},
		registry.Load(filepath.Join(dir, "labels.json")),
		gallery.New(filepath.Join(dir, "dataset"), 85),
		ledger.New(filepath.Join(dir, "attendance.csv")),
		attendance.Config{
			ModelPath: filepath.Join(dir, "model_eigen.gob"),
			PatchSize: 20,
			Threshold: 500,
		},
	)

	cfg := &config.Config{
		Web: config.WebConfig{Host: "127.0.0.1", Port: 8080},
	}
	return NewServer(cfg, svc, "test")
}

func facePayload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(y * 12)})
		}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("name", "alice"); err != nil {
		t.Fatalf("failed to write name field: %v", err)
	}
	part, err := writer.CreateFormFile("image", "face.jpg")
	if err != nil {
		t.Fatalf("failed to create image part: %v", err)
	}
	if err := jpeg.Encode(part, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestServer_HealthRoute(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", recorder.Body.String())
	}
	if got := recorder.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected security headers on API responses, got %q", got)
	}
}

func TestServer_IndexRoute(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("expected HTML content type, got %q", ct)
	}
}

func TestServer_RegisterThenRecognize(t *testing.T) {
	server := newTestServer(t)

	body, contentType := facePayload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("register: expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	body, contentType = facePayload(t)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	recorder = httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("recognize: expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), `"name":"alice"`) {
		t.Errorf("expected recognition of alice, got: %s", recorder.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil)
	recorder = httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if !strings.Contains(recorder.Body.String(), `"count":1`) {
		t.Errorf("expected one attendance record, got: %s", recorder.Body.String())
	}
}

func TestServer_UnknownAPIRoute(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}
