package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/storage/images"
	"github.com/gin-gonic/gin"
)

// ImagesField is the multipart file field carrying listing photos.
const ImagesField = "images"

var errBadForm = errors.New("invalid form data")

// readListingForm turns a multipart or urlencoded body into a sparse patch
// plus the uploaded files in request order.
func readListingForm(ctx *gin.Context) (listing.Patch, []images.Upload, error) {
	if ctx.ContentType() != gin.MIMEMultipartPOSTForm {
		if err := ctx.Request.ParseForm(); err != nil {
			return listing.Patch{}, nil, formError(err)
		}
		return listing.PatchFromForm(ctx.Request.PostForm), nil, nil
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return listing.Patch{}, nil, formError(err)
	}

	files := form.File[ImagesField]
	uploads := make([]images.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, uploadFromHeader(fh))
	}

	return listing.PatchFromForm(form.Value), uploads, nil
}

func uploadFromHeader(fh *multipart.FileHeader) images.Upload {
	return images.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errors.Join(errBadForm, err)
}
