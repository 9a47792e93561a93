package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"foodgram-backend/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var AllowImage = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
}

type (
	// Storage keeps uploaded media and hands out public links to it.
	Storage interface {
		UploadFile(ctx context.Context, file *File, folder string, allowTypes ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetObjectKeyFromLink(link string) string
		GetPublicLinkKey(objectKey string) string
	}

	File struct {
		Data        []byte
		ContentType string
		Extension   string
	}
)

// DecodeDataURI turns "data:image/png;base64,...." into a File. The declared
// media type is ignored; the content type is sniffed from the decoded bytes.
func DecodeDataURI(uri string) (*File, error) {
	header, payload, found := strings.Cut(uri, ",")
	if !found || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, domain.ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, domain.ErrInvalidImage
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, domain.ErrInvalidImage
	}

	return &File{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}

func checkAllowed(file *File, allowTypes []string) error {
	if len(allowTypes) == 0 {
		return nil
	}
	for _, t := range allowTypes {
		if strings.EqualFold(t, file.ContentType) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrFileTypeNotAllowed, file.ContentType)
}

func objectKey(folder string, file *File) string {
	name := uuid.NewString() + file.Extension
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}
