package handlers_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/therapeutes-vaud/internal/middleware"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (a *testApp) upload(filename, contentType string, data []byte, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.1:4000"
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadRequiresSession(t *testing.T) {
	app := newTestApp(t)
	rec := app.upload("me.png", "image/png", pngBytes(t, 10, 10), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken()

	rec := app.upload("notes.txt", "text/plain", []byte("hello"), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// declared as an image but the bytes are not one
	rec = app.upload("fake.png", "image/png", []byte("plain text pretending"), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	entries, err := os.ReadDir(app.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadAndAttachPhoto(t *testing.T) {
	app := newTestApp(t)
	id := app.register("lea@example.ch")
	app.approve(id)
	token := app.loginToken("lea@example.ch")

	rec := app.upload("Mon Portrait.png", "image/png", pngBytes(t, 2048, 1024), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	url, _ := decode(t, rec)["imageUrl"].(string)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "-Mon-Portrait.jpg"), url)

	name := filepath.Base(url)
	f, err := os.Open(filepath.Join(app.uploads, name))
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)

	// the local backend serves what it stored
	rec = app.do(http.MethodGet, "/uploads/"+name, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPut, "/api/accounts/"+id.String(), map[string]any{"photoUrl": url}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/directory/"+id.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, url, decode(t, rec)["therapist"].(map[string]any)["photo"])
}

func TestUploadMissingFile(t *testing.T) {
	app := newTestApp(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: app.adminToken()})
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
