package folioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessImageResizesWideImages(t *testing.T) {
	data, err := processImage(bytes.NewReader(pngBytes(t, 1600, 400)))
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 200 {
		t.Errorf("output = %dx%d, want 800x200", cfg.Width, cfg.Height)
	}
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	data, err := processImage(bytes.NewReader(pngBytes(t, 120, 90)))
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 90 {
		t.Errorf("output = %dx%d, want 120x90", cfg.Width, cfg.Height)
	}
}

func TestProcessImageRejectsNonImage(t *testing.T) {
	_, err := processImage(strings.NewReader("definitely not pixels"))
	if !errors.Is(err, errInvalidImage) {
		t.Errorf("expected errInvalidImage, got %v", err)
	}
}

func TestSlugifyFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"My Photo.PNG", "my-photo"},
		{"screenshot 2024.jpeg", "screenshot-2024"},
		{"weird__name!!.gif", "weird-name"},
	}
	for _, tt := range tests {
		if got := slugifyFilename(tt.in); got != tt.want {
			t.Errorf("slugifyFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDiskImageStore(t *testing.T) {
	dir := t.TempDir()
	d := NewDiskImageStore(dir)
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := d.Store(context.Background(), "blog-images", "My Photo.PNG", bytes.NewReader(pngBytes(t, 10, 10)))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	want := "/uploads/blog-images/my-photo-1700000000000.jpg"
	if ref != want {
		t.Errorf("ref = %q, want %q", ref, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "blog-images", "my-photo-1700000000000.jpg")); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestDiskImageStoreCollisionResistance(t *testing.T) {
	dir := t.TempDir()
	d := NewDiskImageStore(dir)
	ms := int64(1)
	d.now = func() time.Time { ms++; return time.UnixMilli(ms) }

	first, err := d.Store(context.Background(), "blog-images", "same.png", bytes.NewReader(pngBytes(t, 4, 4)))
	if err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	second, err := d.Store(context.Background(), "blog-images", "same.png", bytes.NewReader(pngBytes(t, 4, 4)))
	if err != nil {
		t.Fatalf("second Store failed: %v", err)
	}
	if first == second {
		t.Errorf("same source name produced the same reference twice: %q", first)
	}
}

func TestAssetHostImageStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("folder"); got != "project-images" {
			t.Errorf("folder = %q, want project-images", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part missing: %v", err)
		} else {
			file.Close()
		}
		json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.example.com/abc.jpg"})
	}))
	defer srv.Close()

	s := NewAssetHostImageStore(srv.URL, "sekrit")
	ref, err := s.Store(context.Background(), "project-images", "shot.png", strings.NewReader("img-bytes"))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if ref != "https://cdn.example.com/abc.jpg" {
		t.Errorf("ref = %q", ref)
	}
}

func TestAssetHostImageStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewAssetHostImageStore(srv.URL, "")
	if _, err := s.Store(context.Background(), "blog-images", "x.png", strings.NewReader("bytes")); err == nil {
		t.Fatal("expected error on upstream 500")
	}
}

// multipartContext builds an echo context carrying a multipart body with
// one file part and optional value fields.
func multipartContext(t *testing.T, fileField, filename string, fileData []byte, fields map[string]string) echo.Context {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		part.Write(fileData)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return echo.New().NewContext(req, httptest.NewRecorder())
}

type stubImageStore struct {
	ref string
	err error
}

func (s stubImageStore) Store(ctx context.Context, area, filename string, src io.Reader) (string, error) {
	return s.ref, s.err
}

func TestResolveImageSizeLimit(t *testing.T) {
	a := New(Config{MaxUploadBytes: 16})
	a.Images = stubImageStore{ref: "should-not-be-used"}

	c := multipartContext(t, "file", "big.png", bytes.Repeat([]byte("x"), 64), nil)
	req, apiErr := decodeRequest(c, "file")
	if apiErr != nil {
		t.Fatalf("decodeRequest failed: %v", apiErr)
	}
	_, apiErr = a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr == nil {
		t.Fatal("oversized upload should be rejected")
	}
	if apiErr.Kind != KindBadRequest {
		t.Errorf("kind = %v, want KindBadRequest", apiErr.Kind)
	}
}

func TestResolveImageAtLimitRejected(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 16)
	a := New(Config{MaxUploadBytes: int64(len(data))})
	a.Images = stubImageStore{ref: "should-not-be-used"}

	c := multipartContext(t, "file", "edge.png", data, nil)
	req, _ := decodeRequest(c, "file")
	if _, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl"); apiErr == nil {
		t.Fatal("upload exactly at the limit should be rejected")
	}
}

func TestResolveImageUpstreamFailure(t *testing.T) {
	a := New(Config{})
	a.Images = stubImageStore{err: fmt.Errorf("asset host upload: status 503")}

	c := multipartContext(t, "file", "ok.png", pngBytes(t, 4, 4), nil)
	req, _ := decodeRequest(c, "file")
	_, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr == nil {
		t.Fatal("upload failure should abort the pipeline")
	}
	if apiErr.Kind != KindUpstream {
		t.Errorf("kind = %v, want KindUpstream", apiErr.Kind)
	}
}

func TestResolveImagePassthroughURL(t *testing.T) {
	a := New(Config{})
	c := multipartContext(t, "", "", nil, map[string]string{"imageUrl": " https://cdn.example.com/kept.jpg "})
	req, _ := decodeRequest(c, "file")
	ref, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr != nil {
		t.Fatalf("resolveImage failed: %v", apiErr)
	}
	if ref != "https://cdn.example.com/kept.jpg" {
		t.Errorf("ref = %q", ref)
	}
}

func TestResolveImageNoSource(t *testing.T) {
	a := New(Config{})
	c := multipartContext(t, "", "", nil, map[string]string{"title": "no image here"})
	req, _ := decodeRequest(c, "file")
	ref, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr != nil {
		t.Fatalf("resolveImage failed: %v", apiErr)
	}
	if ref != "" {
		t.Errorf("ref = %q, want empty", ref)
	}
}

func TestResolveImageInvalidFile(t *testing.T) {
	a := New(Config{})
	a.Images = NewDiskImageStore(t.TempDir())

	c := multipartContext(t, "file", "junk.png", []byte("not an image"), nil)
	req, _ := decodeRequest(c, "file")
	_, apiErr := a.resolveImage(c, req, "blog-images", "imageUrl")
	if apiErr == nil {
		t.Fatal("undecodable upload should be rejected")
	}
	if apiErr.Kind != KindBadRequest {
		t.Errorf("kind = %v, want KindBadRequest", apiErr.Kind)
	}
}
