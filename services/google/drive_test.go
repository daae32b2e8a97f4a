package googlesvc

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
)

func TestDriveSource(t *testing.T) {
	srv := newAPIServer(t, map[string]route{
		"GET /files/doc1": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "mimeType", r.URL.Query().Get("fields"))
			writeJSON(w, `{"mimeType":"application/vnd.google-apps.document"}`)
		},
		"GET /files/txt1": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("alt") == "media" {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = io.WriteString(w, "plain notes")
				return
			}
			writeJSON(w, `{"mimeType":"text/plain"}`)
		},
		"GET /v1/documents/doc1": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"documentId":"doc1","body":{"content":[
				{"sectionBreak":{}},
				{"paragraph":{"elements":[{"textRun":{"content":"Once upon "}},{"textRun":{"content":"a time\n"}}]}},
				{"table":{}},
				{"paragraph":{"elements":[{"textRun":{"content":"The end\n"}}]}}
			]}}`)
		},
	})
	src, err := NewDriveSource(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	svc := drive.NewService()

	doc, err := svc.GetFileContent(context.Background(), src, "doc1")
	require.NoError(t, err)
	assert.Equal(t, drive.FileContent{Type: drive.TypeText, Content: "Once upon a time\nThe end\n", MimeType: drive.MimeTypeGoogleDoc}, doc)

	txt, err := svc.GetFileContent(context.Background(), src, "txt1")
	require.NoError(t, err)
	assert.Equal(t, drive.FileContent{Type: drive.TypeText, Content: "plain notes", MimeType: "text/plain"}, txt)

	_, err = svc.GetFileContent(context.Background(), src, "missing")
	assert.Error(t, err)
}
