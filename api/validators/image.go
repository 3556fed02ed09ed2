package validators

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxImageBytes caps decoded inline images.
const MaxImageBytes = 5 << 20

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ValidateImageBase64 checks that value, when set, is base64 image data of
// an allowed type. A data URL prefix is accepted and must agree with the
// sniffed content.
func ValidateImageBase64(field string, value *string) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	raw := strings.TrimSpace(*value)

	declared := ""
	if strings.HasPrefix(raw, "data:") {
		header, payload, ok := strings.Cut(raw, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return invalidImage(field, "malformed data url")
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		raw = payload
	}

	if base64.StdEncoding.DecodedLen(len(raw)) > MaxImageBytes+3 {
		return invalidImage(field, "image too large")
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return invalidImage(field, "not valid base64")
	}
	if len(data) > MaxImageBytes {
		return invalidImage(field, "image too large")
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return invalidImage(field, "unsupported image type "+detected.String())
	}
	if declared != "" && !detected.Is(declared) {
		return invalidImage(field, "declared type "+declared+" does not match content")
	}
	return nil
}

func invalidImage(field, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid image").WithDetails(map[string]string{field: reason})
}
