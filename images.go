package folioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
)

// errInvalidImage marks uploads that could not be decoded as an image.
var errInvalidImage = errors.New("invalid image")

// ImageStore persists one uploaded image and returns its canonical
// reference: a locally-servable path or a host-assigned URL. Exactly one
// implementation is active per deployment.
type ImageStore interface {
	Store(ctx context.Context, area, filename string, src io.Reader) (string, error)
}

// DiskImageStore writes processed uploads beneath a local directory,
// namespaced per content area and served at /uploads.
type DiskImageStore struct {
	dir string
	now func() time.Time
}

// NewDiskImageStore creates a DiskImageStore rooted at dir.
func NewDiskImageStore(dir string) *DiskImageStore {
	return &DiskImageStore{dir: dir, now: time.Now}
}

// Store processes the upload and writes it under <dir>/<area> with a
// millisecond-timestamp suffix for collision resistance.
func (d *DiskImageStore) Store(ctx context.Context, area, filename string, src io.Reader) (string, error) {
	data, err := processImage(src)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%d.jpg", slugifyFilename(filename), d.now().UnixMilli())
	dir := filepath.Join(d.dir, area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/uploads/" + area + "/" + name, nil
}

// processImage decodes an image, resizes it to at most maxImageWidth
// wide, and re-encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidImage, err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// slugifyFilename converts an original filename (without extension) to a
// URL-safe slug.
func slugifyFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return slugify(base)
}

// AssetHostImageStore uploads images to a remote asset host and returns
// the host-assigned canonical URL.
type AssetHostImageStore struct {
	uploadURL string
	key       string
	client    *http.Client
}

// NewAssetHostImageStore creates a client for the asset host upload
// endpoint. key, when set, is sent as a bearer credential.
func NewAssetHostImageStore(uploadURL, key string) *AssetHostImageStore {
	return &AssetHostImageStore{
		uploadURL: uploadURL,
		key:       key,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Store uploads the file in a multipart POST. The area travels as the
// "folder" field so the host can namespace assets per content kind.
func (a *AssetHostImageStore) Store(ctx context.Context, area, filename string, src io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", err
	}
	if err := mw.WriteField("folder", area); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("asset host upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("asset host upload: status %d", resp.StatusCode)
	}

	var result struct {
		URL       string `json:"url"`
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("asset host response: %w", err)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL == "" {
		return "", fmt.Errorf("asset host response: missing url")
	}
	return result.URL, nil
}

// resolveImage produces the canonical image reference for a create or
// update: the stored upload when a file part was sent, otherwise the
// pass-through URL field, otherwise empty. A failed upload aborts the
// request before anything is persisted.
func (a *App) resolveImage(c echo.Context, req *request, area, urlField string) (string, *Error) {
	if req.file == nil {
		return strings.TrimSpace(req.text(urlField)), nil
	}
	if req.file.Size >= a.Config.MaxUploadBytes {
		return "", badRequest(fmt.Sprintf("File too large (max %d bytes)", a.Config.MaxUploadBytes))
	}
	src, err := req.file.Open()
	if err != nil {
		return "", internal(err)
	}
	defer src.Close()
	ref, err := a.Images.Store(c.Request().Context(), area, req.file.Filename, src)
	if err != nil {
		if errors.Is(err, errInvalidImage) {
			return "", badRequest("Invalid image file")
		}
		return "", upstream("Server error during file upload", err)
	}
	return ref, nil
}
