package googlesvc

import (
	"context"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
)

// DriveSource is a drive.Source over the Drive and Docs REST APIs.
type DriveSource struct {
	files *driveapi.Service
	docs  *docsapi.Service
}

var _ drive.Source = (*DriveSource)(nil)

func NewDriveSource(ctx context.Context, opts ...option.ClientOption) (*DriveSource, error) {
	files, err := driveapi.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating drive service")
	}
	docs, err := docsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating docs service")
	}
	return &DriveSource{files: files, docs: docs}, nil
}

func (src *DriveSource) MimeType(ctx context.Context, fileID string) (string, error) {
	f, err := src.files.Files.Get(fileID).Fields(googleapi.Field("mimeType")).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", core.NewUpstreamError("getting metadata of file "+fileID, err)
	}
	return f.MimeType, nil
}

func (src *DriveSource) DocumentText(ctx context.Context, fileID string) (string, error) {
	doc, err := src.docs.Documents.Get(fileID).Context(ctx).Do()
	if err != nil {
		return "", core.NewUpstreamError("getting document "+fileID, err)
	}

	var text strings.Builder
	if doc.Body == nil {
		return "", nil
	}
	for _, el := range doc.Body.Content {
		if el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil {
				text.WriteString(pe.TextRun.Content)
			}
		}
	}
	return text.String(), nil
}

func (src *DriveSource) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := src.files.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, core.NewUpstreamError("downloading file "+fileID, err)
	}
	return resp.Body, nil
}
