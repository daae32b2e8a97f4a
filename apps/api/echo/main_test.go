package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"github.com/serafinsanchez/googleclassroom-portal/apps/api/echo"
	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom/classroomtest"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
	"github.com/serafinsanchez/googleclassroom-portal/storage/database/inmem"
	"github.com/serafinsanchez/googleclassroom-portal/tests"
)

var errMissingToken = httpErr{Error: "not authenticated"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// fakeClients hands out the same in-memory clients to every account.
type fakeClients struct {
	classroom *classroomtest.Client
	drive     *fakeDrive
}

func (c *fakeClients) Classroom(ctx context.Context, acc account.Account) (classroom.Client, error) {
	return c.classroom, nil
}

func (c *fakeClients) Drive(ctx context.Context, acc account.Account) (drive.Source, error) {
	return c.drive, nil
}

type fakeDrive struct {
	files map[string]string // content by file ID
	mimes map[string]string // MIME type by file ID
}

func (d *fakeDrive) MimeType(ctx context.Context, fileID string) (string, error) {
	if mime, ok := d.mimes[fileID]; ok {
		return mime, nil
	}
	return "", core.NewUpstreamError("getting metadata of file "+fileID, errors.New("file not found"))
}

func (d *fakeDrive) DocumentText(ctx context.Context, fileID string) (string, error) {
	return d.files[fileID], nil
}

func (d *fakeDrive) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(d.files[fileID])), nil
}

// fakeIdentity accepts the authorization code "good-code" only.
type fakeIdentity struct {
	profile account.Profile
}

func (i *fakeIdentity) AuthCodeURL(state string) string {
	return "https://accounts.test/o/oauth2/auth?state=" + state
}

func (i *fakeIdentity) Exchange(ctx context.Context, code string) (account.Profile, *oauth2.Token, error) {
	if code != "good-code" {
		return account.Profile{}, nil, core.NewUpstreamError("exchanging authorization code", errors.New("invalid_grant"))
	}
	return i.profile, &oauth2.Token{AccessToken: "google-access", RefreshToken: "google-refresh", TokenType: "Bearer"}, nil
}

type fakeModel struct {
	answer string
	calls  int
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.answer, nil
}

type fixture struct {
	conf     *core.Config
	app      *echoapi.Server
	client   *classroomtest.Client
	drive    *fakeDrive
	model    *fakeModel
	logger   *testutil.Logger
	accounts *account.Service
	acc      account.Account
	token    string
}

func testConfig() *core.Config {
	return &core.Config{
		AppName:         "Classroom Portal",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			RequestTimeout:            5 * time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			DisableReqLogs:            true,
		},
	}
}

// setup builds a server over in-memory services, with a signed in account.
// Without withModel, writing analysis is left unconfigured.
func setup(t *testing.T, withModel bool) *fixture {
	t.Helper()
	conf := testConfig()
	validate, translator := testutil.NewValidator()

	f := &fixture{
		conf:   conf,
		client: classroomtest.New(),
		drive:  &fakeDrive{files: make(map[string]string), mimes: make(map[string]string)},
		model:  &fakeModel{},
		logger: &testutil.Logger{},
	}
	f.accounts = account.NewService(inmemdb.NewAccountRepository(inmemdb.Open()), validate, f.logger, conf.SecretKey)

	var model writing.Model
	if withModel {
		model = f.model
	}

	f.app = echoapi.NewServer(&echoapi.Deps{
		Conf:         conf,
		Logger:       f.logger,
		Validate:     validate,
		Translator:   translator,
		AccountSvc:   f.accounts,
		ClassroomSvc: classroom.NewService(classroom.Options{MaxConcurrency: 4}, f.logger, validate, &testutil.Mailer{}),
		DriveSvc:     drive.NewService(),
		WritingSvc:   writing.NewService(model, validate, f.logger),
		Clients:      &fakeClients{classroom: f.client, drive: f.drive},
		Identity:     &fakeIdentity{profile: account.Profile{ID: "g-2", Name: "Grace Hopper", Email: "grace@school.test"}},
	})

	f.acc = testutil.CreateAccount(t, f.accounts, "g-1", "Ada Lovelace", "ada@school.test")
	f.token = getToken(t, conf, f.acc)
	return f
}

func (f *fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	f.app.ServeHTTP(rec, req)
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, acc account.Account) string {
	token, err := echoapi.GenerateToken(conf, echoapi.NewAccountClaims(conf, acc))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return m
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonUnmarshal(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
