package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bitwise74/image-board/db"
	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/internal/storage"
	"bitwise74/image-board/internal/store"
	"bitwise74/image-board/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 20

type testServer struct {
	srv       *httptest.Server
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	d, err := db.New(db.Options{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	uploadDir := filepath.Join(dir, "uploads")
	local, err := storage.NewLocal(uploadDir, uploadsURLPrefix)
	require.NoError(t, err)

	hasher := security.New()
	hasher.Memory = 1024
	hasher.Iterations = 1

	exts := []string{"png", "jpg", "jpeg"}

	a, err := New(Options{
		DB: d,
		Auth: service.NewAuthService(
			store.NewUsers(d),
			store.NewSessions(d),
			hasher,
			security.NewSessionSigner("test-secret"),
			time.Hour,
		),
		Images: service.NewImageService(store.NewImages(d), local, service.ImageOptions{
			MaxSize:           testMaxUpload,
			AllowedExtensions: exts,
			ThumbnailSize:     32,
		}),
		Storage:           local,
		MaxUploadSize:     testMaxUpload,
		AllowedExtensions: exts,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, uploadDir: uploadDir}
}

// browser keeps cookies between requests and never follows redirects on its own
type browser struct {
	t   *testing.T
	ts  *testServer
	cli *http.Client
}

func (ts *testServer) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:  t,
		ts: ts,
		cli: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()

	resp, err := b.cli.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)

	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodGet, b.ts.srv.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodPost, b.ts.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) upload(fields map[string]string, fileName string, data []byte) (*http.Response, string) {
	b.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}

	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(b.t, err)
	_, err = fw.Write(data)
	require.NoError(b.t, err)
	require.NoError(b.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, b.ts.srv.URL+"/upload_form", &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

// follow asserts a redirect to location and returns the page it leads to
func (b *browser) follow(resp *http.Response, location string) string {
	b.t.Helper()

	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	require.Equal(b.t, location, resp.Header.Get("Location"))

	_, body := b.get(location)
	return body
}

func (b *browser) signUp(name string) {
	b.t.Helper()

	resp, _ := b.post("/register", url.Values{
		"username": {name},
		"email":    {name + "@example.com"},
		"password": {"password123"},
	})
	b.follow(resp, "/login")

	resp, _ = b.post("/login", url.Values{
		"email":    {name + "@example.com"},
		"password": {"password123"},
	})
	b.follow(resp, "/")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 48, 24))
	for x := range 48 {
		for y := range 24 {
			img.Set(x, y, color.RGBA{uint8(x * 5), uint8(y * 10), 200, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Head(ts.srv.URL + "/heartbeat")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRegisterLoginLogout(t *testing.T) {
	ts := newTestServer(t)
	b := ts.browser(t)

	resp, body := b.get("/register")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/register"`)

	resp, _ = b.post("/register", url.Values{
		"username": {"alice"},
		"email":    {"Alice@Example.com"},
		"password": {"password123"},
	})
	body = b.follow(resp, "/login")
	assert.Contains(t, body, "Registration successful! You can now log in.")

	// Flash messages are shown once
	_, body = b.get("/login")
	assert.NotContains(t, body, "Registration successful")

	resp, _ = b.post("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	})
	body = b.follow(resp, "/login")
	assert.Contains(t, body, "Invalid credentials!")

	resp, _ = b.post("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password123"},
	})
	body = b.follow(resp, "/")
	assert.Contains(t, body, "Welcome alice!")
	assert.Contains(t, body, "Signed in as alice")

	resp, _ = b.get("/logout")
	body = b.follow(resp, "/login")
	assert.Contains(t, body, "Logged out successfully.")
	assert.NotContains(t, body, "Signed in as")
}

func TestRegisterDuplicates(t *testing.T) {
	ts := newTestServer(t)
	b := ts.browser(t)
	b.signUp("alice")

	other := ts.browser(t)

	resp, _ := other.post("/register", url.Values{
		"username": {"bob"},
		"email":    {"alice@example.com"},
		"password": {"password123"},
	})
	assert.Contains(t, other.follow(resp, "/register"), "Email already registered!")

	resp, _ = other.post("/register", url.Values{
		"username": {"alice"},
		"email":    {"bob@example.com"},
		"password": {"password123"},
	})
	assert.Contains(t, other.follow(resp, "/register"), "Username already taken!")

	resp, _ = other.post("/register", url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
		"password": {"short"},
	})
	assert.Contains(t, other.follow(resp, "/register"), "password must be at least 8 characters long")
}

func TestStaleSessionCookieIsCleared(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-token"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestUploadRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	b := ts.browser(t)

	resp, _ := b.get("/upload_form")
	assert.Contains(t, b.follow(resp, "/login"), "Please log in to upload images.")

	resp, _ = b.upload(map[string]string{"title": "cat"}, "cat.png", pngBytes(t))
	assert.Contains(t, b.follow(resp, "/login"), "Please log in to upload images.")

	resp, _ = b.get("/my_uploads")
	assert.Contains(t, b.follow(resp, "/login"), "Please log in to see your uploads.")
}

func TestUploadViewAndExplore(t *testing.T) {
	ts := newTestServer(t)
	b := ts.browser(t)
	b.signUp("alice")

	resp, body := b.get("/upload_form")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `enctype="multipart/form-data"`)

	resp, _ = b.upload(map[string]string{
		"title":       "Sunset",
		"description": "over the sea",
		"tags":        "Nature, Sky",
		"category":    "photo",
		"visibility":  "public",
	}, "../../sunset.png", pngBytes(t))
	body = b.follow(resp, "/upload_done/1")
	assert.Contains(t, body, "Image uploaded successfully!")
	assert.Contains(t, body, "Sunset")
	assert.Contains(t, body, `href="/edit/1"`)

	// Both the original and its thumbnail landed in the upload directory
	entries, err := os.ReadDir(ts.uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var original, thumb string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "thumb_") {
			thumb = e.Name()
		} else {
			original = e.Name()
		}
	}
	assert.True(t, strings.HasSuffix(original, "_sunset.png"), original)
	assert.True(t, strings.HasSuffix(thumb, ".jpg"), thumb)

	resp, _ = b.get("/uploads/" + thumb)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = b.upload(map[string]string{
		"title":      "Secret",
		"tags":       "nature",
		"visibility": "private",
	}, "secret.png", pngBytes(t))
	b.follow(resp, "/upload_done/2")

	anon := ts.browser(t)

	_, body = anon.get("/explore")
	assert.Contains(t, body, "Sunset")
	assert.NotContains(t, body, "Secret")

	_, body = anon.get("/explore?tag=NATURE")
	assert.Contains(t, body, "Sunset")

	_, body = anon.get("/explore?tag=city")
	assert.NotContains(t, body, "Sunset")

	// Private images only exist for their owner
	resp, _ = anon.get("/upload_done/2")
	assert.Contains(t, anon.follow(resp, "/explore"), "Image not found.")

	_, body = b.get("/my_uploads")
	assert.Contains(t, body, "Sunset")
	assert.Contains(t, body, "Secret")
}

func TestUploadRejected(t *testing.T) {
	ts := newTestServer(t)
	b := ts.browser(t)
	b.signUp("alice")

	resp, _ := b.upload(map[string]string{"title": "anim"}, "anim.gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	assert.Contains(t, b.follow(resp, "/upload_form"), "Invalid file type. Only PNG, JPG, JPEG allowed.")

	// Right extension, wrong content
	resp, _ = b.upload(map[string]string{"title": "fake"}, "fake.png", []byte("definitely not an image"))
	assert.Contains(t, b.follow(resp, "/upload_form"), "Invalid file type.")

	big := append(pngBytes(t), make([]byte, testMaxUpload)...)
	resp, _ = b.upload(map[string]string{"title": "big"}, "big.png", big)
	assert.Contains(t, b.follow(resp, "/upload_form"), "File too large. Max 1MB.")

	resp, _ = b.upload(map[string]string{"title": ""}, "notitle.png", pngBytes(t))
	assert.Equal(t, "/upload_form", resp.Header.Get("Location"))

	entries, err := os.ReadDir(ts.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditAndDelete(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.browser(t)
	alice.signUp("alice")

	resp, _ := alice.upload(map[string]string{"title": "Cat", "tags": "pets"}, "cat.png", pngBytes(t))
	alice.follow(resp, "/upload_done/1")

	bob := ts.browser(t)
	bob.signUp("bob")

	resp, _ = bob.get("/edit/1")
	assert.Contains(t, bob.follow(resp, "/explore"), "permission to edit this image")

	resp, _ = bob.post("/edit/1", url.Values{"title": {"Mine now"}})
	bob.follow(resp, "/explore")

	resp, _ = bob.get("/delete/1")
	assert.Contains(t, bob.follow(resp, "/explore"), "permission to delete this image")

	resp, body := alice.get("/edit/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Cat"`)

	resp, _ = alice.post("/edit/1", url.Values{
		"title":      {"Grumpy cat"},
		"tags":       {"pets, cats"},
		"visibility": {"public"},
	})
	body = alice.follow(resp, "/upload_done/1")
	assert.Contains(t, body, "Image updated!")
	assert.Contains(t, body, "Grumpy cat")

	resp, _ = alice.get("/edit/abc")
	alice.follow(resp, "/explore")

	resp, _ = alice.get("/delete/1")
	assert.Contains(t, alice.follow(resp, "/explore"), "Image deleted!")

	_, body = bob.get("/explore")
	assert.NotContains(t, body, "Grumpy cat")

	_, body = alice.get("/my_uploads")
	assert.NotContains(t, body, "Grumpy cat")

	resp, _ = bob.get("/upload_done/1")
	bob.follow(resp, "/explore")

	resp, _ = alice.get("/delete/99")
	assert.Contains(t, alice.follow(resp, "/explore"), "Image not found.")
}

func TestCorsOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"http://a.test", "http://b.test", "http://c.test"},
		corsOrigins([]string{"http://a.test, http://b.test", " http://c.test", ""}),
	)
}
