package filemgr

import "errors"

const (
	// MaxImageSize bounds a single product image upload.
	MaxImageSize = 10 << 20

	ThumbWidth    = 300
	ThumbSubdir   = "thumb"
	ImageSubdir   = "products"
	SavedImageExt = ".jpg"
)

var (
	AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	AllowedMIMEs      = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrInvalidExtension = errors.New("invalid file extension")
	ErrInvalidMIME      = errors.New("invalid MIME type")
	ErrFileTooLarge     = errors.New("file size exceeds limit")
	ErrUndecodable      = errors.New("undecodable image")
)
