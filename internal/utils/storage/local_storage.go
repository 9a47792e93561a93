package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/logging"
)

type localStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage writes media under root and serves it from baseURL, which
// the app mounts with fiber's Static handler.
func NewLocalStorage(root, baseURL string) Storage {
	return &localStorage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func NewLocalStorageFromConfig() Storage {
	return NewLocalStorage(utils.GetConfig("MEDIA_ROOT"), utils.GetConfig("MEDIA_URL"))
}

func (l *localStorage) UploadFile(ctx context.Context, file *File, folder string, allowTypes ...string) (string, error) {
	if err := checkAllowed(file, allowTypes); err != nil {
		return "", err
	}

	key := objectKey(folder, file)
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", err
	}

	logging.Ctx(ctx).Debug().Str("object_key", key).Msg("media stored locally")
	return key, nil
}

func (l *localStorage) DeleteFile(ctx context.Context, objectKey string) error {
	if objectKey == "" || strings.Contains(objectKey, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(objectKey)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *localStorage) GetObjectKeyFromLink(link string) string {
	prefix := l.baseURL + "/"
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

func (l *localStorage) GetPublicLinkKey(objectKey string) string {
	return l.baseURL + "/" + objectKey
}
