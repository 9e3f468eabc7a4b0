package validators

import (
	"errors"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

// MultipartFile returns the first present file among fields. The caller owns
// closing the returned file.
func MultipartFile(w http.ResponseWriter, r *http.Request, maxBytes int64, fields ...string) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").WithDetails(map[string]any{"maxBytes": maxBytes})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload")
		}
		if header.Size == 0 {
			_ = file.Close()
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
		}
		return file, header, nil
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").WithDetails(map[string]any{"fields": fields})
}
