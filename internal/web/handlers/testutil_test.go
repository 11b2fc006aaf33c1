package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/jarvislab/jarvis/internal/detector"
	"github.com/jarvislab/jarvis/internal/faceauth"
	"github.com/jarvislab/jarvis/internal/imaging"
	"github.com/jarvislab/jarvis/internal/registry"
)

// fakeLocator returns a fixed set of boxes regardless of the image.
type fakeLocator struct {
	boxes []detector.Box
}

func (f *fakeLocator) Detect(ctx context.Context, imageData []byte) ([]detector.Box, error) {
	return f.boxes, nil
}

var singleFace = []detector.Box{{X: 20, Y: 20, Width: 160, Height: 160}}

// faceImage renders a textured 200x200 test frame so distinct patterns
// score as distinct faces.
func faceImage(t *testing.T, pattern string) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := range 200 {
		for x := range 200 {
			var v int
			switch pattern {
			case "gradient":
				v = (x + y) * 255 / 398
			case "checker":
				if (x/20+y/20)%2 == 0 {
					v = 255
				}
			default:
				t.Fatalf("unknown pattern %s", pattern)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return data
}

func base64Image(t *testing.T, pattern string) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(faceImage(t, pattern))
}

// newFaceService creates a face service with a single-face locator and a
// temp registry.
func newFaceService(t *testing.T) (*faceauth.Service, *registry.Registry) {
	t.Helper()
	reg, err := registry.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open registry: %v", err)
	}
	return faceauth.New(&fakeLocator{boxes: singleFace}, reg, 0.4, nil), reg
}

// jsonRequest builds a request with a JSON-encoded body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart upload with a single file field.
func multipartRequest(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write multipart data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error containing the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if !strings.Contains(result["error"], expectedMessage) {
		t.Errorf("expected error containing '%s', got '%s'", expectedMessage, result["error"])
	}
}
