package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/recipekeeper/internal/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/blobstore"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/services"
)

var testKey = []byte("test-signing-key")

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	ErrCode string          `json:"code"`
	ErrMsg  string          `json:"message"`
}

func newTestServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()

	rm := repomanager.NewInMemoryRepositoryManager()
	blobs, err := blobstore.NewDiskStore(filepath.Join(t.TempDir(), "content"))
	require.NoError(t, err)

	logger := logging.NewNopLogger()
	hasher := cryptox.NewHasher(cryptox.Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})

	srv := NewHttpServer(
		services.NewAccountService(rm.Accounts(), hasher, logger),
		services.NewSubmissionService(rm.Submissions(), blobs, logger),
		logger,
		Options{
			JWTKey:          testKey,
			SessionValidity: time.Hour,
			MaxUploadBytes:  maxUpload,
			AllowedOrigins:  []string{"*"},
			LogLevel:        slog.LevelError,
			Version:         "test",
		},
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func postJSON(t *testing.T, url string, body any) (*http.Response, envelope) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

type file struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, url, token string, fields map[string]string, files []file) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func get(t *testing.T, url string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return do(t, req)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, env := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
}

func TestAccountsAndSessions(t *testing.T) {
	ts := newTestServer(t, 0)
	creds := map[string]string{"username": "ravi", "password": "secret123"}

	resp, env := postJSON(t, ts.URL+"/api/accounts", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", env.Status)

	resp, env = postJSON(t, ts.URL+"/api/accounts", map[string]string{"username": "ravi", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username_taken", env.ErrCode)

	resp, env = postJSON(t, ts.URL+"/api/accounts", map[string]string{"username": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", env.ErrCode)

	resp, env = postJSON(t, ts.URL+"/api/sessions", map[string]string{"username": "ravi", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", env.ErrCode)

	resp, env = postJSON(t, ts.URL+"/api/sessions", map[string]string{"username": "nobody", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", env.ErrCode)

	resp, env = postJSON(t, ts.URL+"/api/sessions", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sess sessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "ravi", sess.Username)

	username, err := auth.UsernameFromToken(sess.Token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "ravi", username)
}

func TestCreateAccount_MalformedBody(t *testing.T) {
	ts := newTestServer(t, 0)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/accounts", strings.NewReader("{"))
	require.NoError(t, err)
	resp, env := do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", env.ErrCode)
}

func TestContribute_AnonymousAndLoggedIn(t *testing.T) {
	ts := newTestServer(t, 0)

	resp, env := do(t, multipartRequest(t, ts.URL+"/api/submissions", "", map[string]string{
		"recipe_name": "Gongura Pappu",
		"region":      "Andhra Pradesh",
		"food_type":   models.FoodLunch,
		"ingredients": "gongura leaves\ntoor dal",
	}, []file{{field: "images", name: "pappu.png", data: pngHeader}}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.ErrMsg)

	var created createdResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	token, err := auth.GenerateToken("ravi", testKey, time.Hour)
	require.NoError(t, err)
	resp, env = do(t, multipartRequest(t, ts.URL+"/api/submissions", token, map[string]string{
		"recipe_name": "Ariselu",
		"food_type":   models.FoodSweet,
	}, nil))
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.ErrMsg)

	var second createdResponse
	require.NoError(t, json.Unmarshal(env.Data, &second))

	_, env = get(t, ts.URL+"/api/submissions/"+created.ID)
	var first models.Submission
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, models.AnonymousUser, first.SubmittedBy)
	require.Len(t, first.Attachments.Images, 1)
	assert.Equal(t, "pappu.png", first.Attachments.Images[0].OriginalName)

	_, env = get(t, ts.URL+"/api/submissions/"+second.ID)
	var sub models.Submission
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, "ravi", sub.SubmittedBy)
	assert.Equal(t, models.PlaceholderRegion, sub.Region)

	// attachment bytes come back unchanged
	raw, err := http.Get(ts.URL + "/api/attachments/" + first.Attachments.Images[0].Ref)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t, "image/png", raw.Header.Get("Content-Type"))
	body := new(bytes.Buffer)
	_, err = body.ReadFrom(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, body.Bytes())
}

func TestAttachment_ServesDeclaredContentType(t *testing.T) {
	ts := newTestServer(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("recipe_name", "Pulihora"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="audios"; filename="clip.ogg"`)
	h.Set("Content-Type", "audio/ogg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("narration in plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/submissions", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, env := do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.ErrMsg)
	var created createdResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	_, env = get(t, ts.URL+"/api/submissions/"+created.ID)
	var sub models.Submission
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	require.Len(t, sub.Attachments.Audios, 1)
	assert.Equal(t, "audio/ogg", sub.Attachments.Audios[0].ContentType)

	raw, err := http.Get(ts.URL + "/api/attachments/" + sub.Attachments.Audios[0].Ref)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t, "audio/ogg", raw.Header.Get("Content-Type"))
}

func TestContribute_InvalidToken(t *testing.T) {
	ts := newTestServer(t, 0)

	resp, env := do(t, multipartRequest(t, ts.URL+"/api/submissions", "not-a-jwt", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", env.ErrCode)

	_, env = get(t, ts.URL+"/api/submissions")
	var subs []models.Submission
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	assert.Empty(t, subs)
}

func TestContribute_TooLarge(t *testing.T) {
	ts := newTestServer(t, 1024)

	resp, env := do(t, multipartRequest(t, ts.URL+"/api/submissions", "", nil,
		[]file{{field: "videos", name: "big.mp4", data: bytes.Repeat([]byte{0x42}, 8<<10)}}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "too_large", env.ErrCode)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, f := range []map[string]string{
		{"recipe_name": "Gongura Pappu", "region": "Andhra Pradesh", "food_type": models.FoodLunch},
		{"recipe_name": "Ariselu", "region": "Telangana", "food_type": models.FoodSweet},
	} {
		resp, _ := do(t, multipartRequest(t, ts.URL+"/api/submissions", "", f, nil))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	names := func(query string) []string {
		_, env := get(t, ts.URL+"/api/submissions"+query)
		var subs []models.Submission
		require.NoError(t, json.Unmarshal(env.Data, &subs))
		out := []string{}
		for _, s := range subs {
			out = append(out, s.RecipeName)
		}
		return out
	}

	assert.Equal(t, []string{"Ariselu", "Gongura Pappu"}, names(""))
	assert.Equal(t, []string{"Gongura Pappu"}, names("?q=gongura"))
	assert.Equal(t, []string{"Ariselu"}, names("?region=telan"))
	assert.Equal(t, []string{"Ariselu"}, names("?food_type="+models.FoodSweet))
	assert.Equal(t, []string{}, names("?q=gongura&food_type="+models.FoodSweet))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, 0)

	resp, env := get(t, ts.URL+"/api/submissions/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", env.ErrCode)

	resp, env = get(t, ts.URL+"/api/attachments/images/missing.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", env.ErrCode)

	resp, env = get(t, ts.URL+"/api/attachments/documents/x.pdf")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", env.ErrCode)
}

func TestFoodTypes(t *testing.T) {
	ts := newTestServer(t, 0)

	_, env := get(t, ts.URL+"/api/food-types")
	var got []string
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.FoodTypes, got)
}
