package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/detect"
	"github.com/kozaktomas/faceledger/internal/gallery"
	"github.com/kozaktomas/faceledger/internal/ledger"
	"github.com/kozaktomas/faceledger/internal/registry"
)

const (
	testPatchSize = 20
	testThreshold = 500.0
)

// passthroughLocator treats the whole image as the face, so handler tests can
// exercise the real pipeline without a cascade file.
type passthroughLocator struct{}

func (passthroughLocator) Locate(src image.Image) (*image.Gray, image.Rectangle, error) {
	return detect.Normalize(src, src.Bounds(), testPatchSize), src.Bounds(), nil
}

// noFaceLocator reports every image as faceless.
type noFaceLocator struct{}

func (noFaceLocator) Locate(image.Image) (*image.Gray, image.Rectangle, error) {
	return nil, image.Rectangle{}, detect.ErrNoFace
}

// newTestService creates a service backed by a temp data directory.
func newTestService(t *testing.T, locator attendance.FaceLocator) *attendance.Service {
	t.Helper()

	dir := t.TempDir()
	return attendance.New(
		locator,
		registry.Load(filepath.Join(dir, "labels.json")),
		gallery.New(filepath.Join(dir, "dataset"), 85),
		ledger.New(filepath.Join(dir, "attendance.csv")),
		attendance.Config{
			ModelPath: filepath.Join(dir, "model_eigen.gob"),
			PatchSize: testPatchSize,
			Threshold: testThreshold,
		},
	)
}

// verticalFace is one synthetic identity, dominated by a vertical gradient.
func verticalFace(variant int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, testPatchSize, testPatchSize))
	for y := 0; y < testPatchSize; y++ {
		for x := 0; x < testPatchSize; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(y*12 + (x*7+y*13+variant*3)%5)})
		}
	}
	return img
}

// horizontalFace is a second identity, dominated by a horizontal gradient.
func horizontalFace(variant int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, testPatchSize, testPatchSize))
	for y := 0; y < testPatchSize; y++ {
		for x := 0; x < testPatchSize; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*12 + (x*11+y*3+variant*7)%5)})
		}
	}
	return img
}

// flatFace is equidistant from the two gradient identities by symmetry.
func flatFace() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, testPatchSize, testPatchSize))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

// jpegBytes encodes an image as JPEG.
func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with optional text fields and an
// optional "image" file part. Returns the body and its content type.
func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("image", "face.jpg")
		if err != nil {
			t.Fatalf("failed to create image part: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("failed to write image part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// postMultipart builds a POST request carrying a multipart form.
func postMultipart(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, fields, file)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

// registerSample enrolls a face directly through the service.
func registerSample(t *testing.T, svc *attendance.Service, name string, img image.Image) {
	t.Helper()

	result, err := svc.Register(context.Background(), name, bytes.NewReader(jpegBytes(t, img)))
	if err != nil {
		t.Fatalf("failed to register %s: %v", name, err)
	}
	if result.Status != attendance.RegisterRegistered {
		t.Fatalf("expected status %q for %s, got %q", attendance.RegisterRegistered, name, result.Status)
	}
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
