package serviceimpl

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"event-gallery/domain/services"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// sniffImage detects the type from content and checks that the header decodes.
func sniffImage(data []byte) (mimeType, ext string, cfg image.Config, err error) {
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", "", cfg, services.ErrUnsupportedMediaType
	}
	cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", cfg, services.ErrUnsupportedMediaType
	}
	return mt.String(), mt.Extension(), cfg, nil
}
