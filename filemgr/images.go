package filemgr

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Saved describes an image written under the upload root. URLs are relative
// to the static mount, e.g. /static/uploads/products/<id>.jpg.
type Saved struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl"`
}

// ImageStore writes decoded images and their thumbnails below Root.
type ImageStore struct {
	Root      string
	URLPrefix string
}

func NewImageStore(root, urlPrefix string) *ImageStore {
	return &ImageStore{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

// CheckUpload validates the client file name and sniffed content type.
func CheckUpload(filename string, head []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	mime := http.DetectContentType(head)
	if !slices.Contains(AllowedMIMEs, mime) {
		return fmt.Errorf("%w: %s", ErrInvalidMIME, mime)
	}
	return nil
}

// Save decodes src, re-encodes it as JPEG and writes a ThumbWidth-wide copy.
func (s *ImageStore) Save(src io.Reader) (Saved, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return Saved{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	name := uuid.NewString() + SavedImageExt
	dir := filepath.Join(s.Root, ImageSubdir)
	thumbDir := filepath.Join(dir, ThumbSubdir)
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return Saved{}, fmt.Errorf("create upload directory: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return Saved{}, fmt.Errorf("save original image: %w", err)
	}
	thumb := imaging.Resize(img, ThumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		return Saved{}, fmt.Errorf("save thumbnail: %w", err)
	}

	return Saved{
		Name:     name,
		URL:      path.Join(s.URLPrefix, ImageSubdir, name),
		ThumbURL: path.Join(s.URLPrefix, ImageSubdir, ThumbSubdir, name),
	}, nil
}
