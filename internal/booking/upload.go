package booking

import (
	"fmt"
	"strings"

	"github.com/homecyclehelp/booking-client/internal/backend"
)

// MaxPhotoBytes is the largest accepted photo attachment (5 MiB).
const MaxPhotoBytes = 5 * 1024 * 1024

// allowedPhotoTypes is the MIME whitelist for the photo attachment.
// "image/jpg" is a widespread alias of "image/jpeg" and accepted as such.
var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

// UploadReason says why a photo was rejected.
type UploadReason string

const (
	UploadWrongType UploadReason = "wrong_type"
	UploadTooLarge  UploadReason = "too_large"
)

// UploadError reports a rejected photo with a distinguishable reason.
type UploadError struct {
	Reason UploadReason
}

func (e *UploadError) Error() string {
	switch e.Reason {
	case UploadWrongType:
		return "seuls les fichiers JPG, PNG ou WEBP sont autorisés"
	case UploadTooLarge:
		return "fichier trop lourd (max 5 Mo)"
	default:
		return fmt.Sprintf("photo rejetée (%s)", e.Reason)
	}
}

// ValidatePhoto enforces the type and size policy on a photo attachment.
// Validation is local; the file is never uploaded to check it.
func ValidatePhoto(photo backend.Photo) error {
	contentType := strings.ToLower(strings.TrimSpace(photo.ContentType))
	if _, ok := allowedPhotoTypes[contentType]; !ok {
		return &UploadError{Reason: UploadWrongType}
	}
	if len(photo.Data) > MaxPhotoBytes {
		return &UploadError{Reason: UploadTooLarge}
	}
	return nil
}
