package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("min_neighbors"); got != "3" {
			t.Errorf("expected min_neighbors=3, got %s", got)
		}
		if got := r.URL.Query().Get("min_size"); got != "50" {
			t.Errorf("expected min_size=50, got %s", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
		}
		json.NewEncoder(w).Encode(detectResponse{Faces: []Box{
			{X: 10, Y: 20, Width: 100, Height: 120},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 3, 50)
	boxes, err := client.Detect(context.Background(), []byte("fake-image-bytes"))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if boxes[0].X != 10 || boxes[0].Y != 20 || boxes[0].Width != 100 || boxes[0].Height != 120 {
		t.Errorf("unexpected box %+v", boxes[0])
	}
}

func TestClient_DetectNoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{Faces: []Box{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 0)
	boxes, err := client.Detect(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(boxes) != 0 {
		t.Errorf("expected no boxes, got %d", len(boxes))
	}
}

func TestClient_DetectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, 0)
	if _, err := client.Detect(context.Background(), []byte("img")); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestBox_Helpers(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 60, Height: 80}

	if b.Area() != 4800 {
		t.Errorf("expected area 4800, got %d", b.Area())
	}
	if got := b.AspectRatio(); got != 0.75 {
		t.Errorf("expected aspect ratio 0.75, got %f", got)
	}
	rect := b.Rect()
	if rect.Min.X != 10 || rect.Min.Y != 20 || rect.Max.X != 70 || rect.Max.Y != 100 {
		t.Errorf("unexpected rect %v", rect)
	}

	degenerate := Box{Width: 10, Height: 0}
	if degenerate.AspectRatio() != 0 {
		t.Error("expected zero aspect ratio for degenerate box")
	}
}
