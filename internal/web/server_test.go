package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/config"
	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/store"
)

type testEnv struct {
	server *Server
	auth   *auth.Service
	token  string
}

func newTestEnv(t *testing.T, env map[string]string) *testEnv {
	t.Helper()

	vars := map[string]string{
		"DATABASE_URL":       ":memory:",
		"RATE_LIMIT_ENABLED": "false",
		"EXPORT_SCALE":       "2",
	}
	for k, v := range env {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(config.MapLookup(vars))
	require.NoError(t, err)

	st, err := store.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	authSvc, err := auth.New(st, auth.Options{
		SessionTTL: time.Hour,
		DemoUsers:  true,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	renderer, err := card.NewRenderer(cfg.Export.Scale)
	require.NoError(t, err)

	svc, err := core.NewService(core.Deps{
		Store:    st,
		Exporter: card.NewExporter(renderer, cfg.Export.Workers, cfg.Export.MaxCards),
		Import:   cfg.Import,
	})
	require.NoError(t, err)

	sess, err := authSvc.Login(context.Background(), "agent@mairie-cotonou.bj", "agent123")
	require.NoError(t, err)

	return &testEnv{server: NewServer(svc, authSvc, cfg), auth: authSvc, token: sess.Token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/healthz", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	h := decode[healthResponse](t, rec)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 4, h.Imports.MaxConcurrent)
	assert.Equal(t, 1, h.Sessions)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "admin@mairie-cotonou.bj", Password: "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH001", decode[ErrorResponse](t, rec).Code)

	rec = e.do(t, http.MethodPost, "/api/auth/register", registerRequest{Email: "chef@cotonou.bj", Password: "secret1", FullName: "Chef"}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decode[auth.Session](t, rec)
	assert.Equal(t, "chef@cotonou.bj", sess.User.Email)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, sess.Token, cookie.Value)

	rec = e.do(t, http.MethodPost, "/api/auth/register", registerRequest{Email: "chef@cotonou.bj", Password: "secret1", FullName: "Chef"}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	e.server.Router().ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "Chef", decode[auth.User](t, me).FullName)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	e.server.Router().ServeHTTP(out, req)
	assert.Equal(t, http.StatusNoContent, out.Code)

	_, ok := e.auth.Lookup(sess.Token)
	assert.False(t, ok)
}

func TestAPI_RequiresSession(t *testing.T) {
	e := newTestEnv(t, nil)

	for _, path := range []string{"/api/card-sets", "/api/auth/me"} {
		rec := e.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := e.do(t, http.MethodGet, "/api/sample?n=3&seed=9", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]map[string]string](t, rec)
	assert.Len(t, body["records"], 3)
}

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImport(t *testing.T) {
	e := newTestEnv(t, map[string]string{"IMPORT_MAX_FILE_SIZE": "4096"})

	csv := "N° NPC;Nom;Prénoms;Téléphone\nNPC-1;DOSSOU;Koffi;97 00 11 22\n"

	tests := []struct {
		name       string
		field      string
		file       string
		data       []byte
		wantStatus int
		wantCode   string
	}{
		{"csv", "file", "liste.csv", []byte(csv), http.StatusOK, ""},
		{"no file", "", "", nil, http.StatusBadRequest, "FILE004"},
		{"unsupported", "file", "photo.png", []byte{0x89, 'P', 'N', 'G', 0, 0}, http.StatusUnsupportedMediaType, "FILE002"},
		{"empty", "file", "vide.xlsx", nil, http.StatusUnprocessableEntity, "FILE005"},
		{"too large", "file", "big.csv", bytes.Repeat([]byte("a;"), 4000), http.StatusRequestEntityTooLarge, "FILE001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, tt.file, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/import", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("Authorization", "Bearer "+e.token)
			rec := httptest.NewRecorder()

			e.server.Router().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
				return
			}
			res := decode[core.ImportResult](t, rec)
			require.Len(t, res.Records, 1)
			assert.Equal(t, "NPC-1", res.Records[0].NPC)
			assert.Equal(t, "liste.csv", res.FileName)
		})
	}
}

func TestCardSetsAndExport(t *testing.T) {
	e := newTestEnv(t, nil)

	sample := decode[map[string]json.RawMessage](t, e.do(t, http.MethodGet, "/api/sample?n=2&seed=3", nil, false))
	var cards []map[string]string
	require.NoError(t, json.Unmarshal(sample["records"], &cards))

	rec := e.do(t, http.MethodPost, "/api/card-sets", map[string]any{"name": "Lot A", "cards": cards}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	set := decode[store.CardSet](t, rec)
	assert.Len(t, set.Records, 2)

	rec = e.do(t, http.MethodGet, "/api/card-sets", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.CardSet](t, rec), 1)

	rec = e.do(t, http.MethodPut, "/api/card-sets/"+set.ID, map[string]any{"name": "Lot B"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lot B", decode[store.CardSet](t, rec).Name)

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/export?format=pdf", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/export?format=zip", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cartes-b2.zip")

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/export?format=doc", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/cards/"+set.Records[0].ID+".png", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/cards/nope.png", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SET003", decode[ErrorResponse](t, rec).Code)

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/cards/"+set.Records[1].ID+".pdf", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+card.FileName(set.Records[1])+`"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/cards/nope.pdf", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SET003", decode[ErrorResponse](t, rec).Code)

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID+"/cards/"+set.Records[1].ID+".pdf", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/export?format=pdf", map[string]any{"cards": cards}, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/export", map[string]any{"cards": []any{}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EXP001", decode[ErrorResponse](t, rec).Code)

	rec = e.do(t, http.MethodPost, "/api/qr", map[string]string{"npc": "NPC-7"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode[map[string]string](t, rec)["payload"], "N° NPC: NPC-7"))

	rec = e.do(t, http.MethodDelete, "/api/card-sets/"+set.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/card-sets/"+set.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SET001", decode[ErrorResponse](t, rec).Code)
}

func TestCardSets_InvalidBody(t *testing.T) {
	e := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/card-sets", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL001", decode[ErrorResponse](t, rec).Code)
}

func TestPages(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="login"`)

	rec = e.do(t, http.MethodGet, "/", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="import"`)
	assert.Contains(t, rec.Body.String(), "Agent Municipal")

	rec = e.do(t, http.MethodGet, "/sets/whatever", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(t, http.MethodGet, "/sets/whatever", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "SET001")
}

func TestRateLimiter(t *testing.T) {
	e := newTestEnv(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "2",
	})

	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodGet, "/healthz", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/sample", nil, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyImports))
	assert.Equal(t, http.StatusConflict, statusFor(core.ErrImportInProgress))
}
