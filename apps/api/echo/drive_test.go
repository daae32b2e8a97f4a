package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
)

func TestDriveApi_FileContent(t *testing.T) {
	f := setup(t, false)
	f.drive.mimes["doc"] = drive.MimeTypeGoogleDoc
	f.drive.files["doc"] = "Chapter one"
	f.drive.mimes["pdf"] = "application/pdf"

	tests := []httpTest{
		{
			name: "google doc", path: "/api/drive/files/doc/content", wantCode: http.StatusOK,
			wantData: marchallObj(t, drive.FileContent{Type: drive.TypeText, Content: "Chapter one", MimeType: drive.MimeTypeGoogleDoc}),
		},
		{
			name: "unsupported", path: "/api/drive/files/pdf/content", wantCode: http.StatusOK,
			wantData: marchallObj(t, drive.FileContent{Type: drive.TypeUnsupported, MimeType: "application/pdf"}),
		},
		{
			name: "missing file", path: "/api/drive/files/nope/content", wantCode: http.StatusInternalServerError,
			wantData: []byte(`{"error": "getting metadata of file nope failed", "details": "file not found"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, f.token)
			f.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
