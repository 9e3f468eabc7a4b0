package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var imageContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// NormalizeImageContentType strips parameters and rejects anything that is
// not a supported image type.
func NormalizeImageContentType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		return "", fmt.Errorf("invalid content type %q", contentType)
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := imageContentTypes[mediaType]; !ok {
		return "", fmt.Errorf("unsupported image type %q (allowed: png, jpeg, webp, gif)", mediaType)
	}
	return mediaType, nil
}

// ProductImageKey builds products/<product id>/<random>.<ext>.
func ProductImageKey(productID uuid.UUID, contentType string) string {
	return path.Join("products", productID.String(), uuid.NewString()+imageContentTypes[contentType])
}

// PetPhotoKey builds bookings/<booking id>/<random>.<ext>.
func PetPhotoKey(bookingID uuid.UUID, contentType string) string {
	return path.Join("bookings", bookingID.String(), uuid.NewString()+imageContentTypes[contentType])
}
