// Package drive reads the content of Drive files attached to submissions.
package drive

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const MimeTypeGoogleDoc = "application/vnd.google-apps.document"

// Content types
const (
	TypeText        = "text"
	TypeImage       = "image"
	TypeUnsupported = "unsupported"
)

const maxDownloadSize = 10 << 20 // 10 MiB

var ErrFileTooLarge = errors.New("file too large")

type FileContent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	MimeType string `json:"mimeType"`
}

// Source gives access to the files of one Google account.
type Source interface {
	MimeType(ctx context.Context, fileID string) (string, error)
	// DocumentText returns the text runs of a Google Doc, concatenated.
	DocumentText(ctx context.Context, fileID string) (string, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// GetFileContent returns a file's content in a form the dashboard can display:
// Google Docs and text files as text, images base64 encoded. Other files are reported unsupported.
func (svc *Service) GetFileContent(ctx context.Context, src Source, fileID string) (FileContent, error) {
	mimeType, err := src.MimeType(ctx, fileID)
	if err != nil {
		return FileContent{}, pkgerrors.Wrap(err, "getting file metadata")
	}
	fc := FileContent{MimeType: mimeType}

	switch {
	case mimeType == MimeTypeGoogleDoc:
		text, err := src.DocumentText(ctx, fileID)
		if err != nil {
			return FileContent{}, pkgerrors.Wrap(err, "getting document")
		}
		fc.Type = TypeText
		fc.Content = text
	case strings.HasPrefix(mimeType, "text/"):
		body, err := download(ctx, src, fileID)
		if err != nil {
			return FileContent{}, err
		}
		fc.Type = TypeText
		fc.Content = string(body)
	case strings.HasPrefix(mimeType, "image/"):
		body, err := download(ctx, src, fileID)
		if err != nil {
			return FileContent{}, err
		}
		fc.Type = TypeImage
		fc.Content = base64.StdEncoding.EncodeToString(body)
	default:
		fc.Type = TypeUnsupported
	}
	return fc, nil
}

func download(ctx context.Context, src Source, fileID string) ([]byte, error) {
	rc, err := src.Download(ctx, fileID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "downloading file")
	}
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(io.LimitReader(rc, maxDownloadSize+1))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading file")
	}
	if len(body) > maxDownloadSize {
		return nil, ErrFileTooLarge
	}
	return body, nil
}
