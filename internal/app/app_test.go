package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/notice"
	"teakspice-storefront/internal/storage"
)

const (
	userHex    = "64b7f0c2a1b2c3d4e5f60718"
	productHex = "64b7f0c2a1b2c3d4e5f60719"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"jwt-1","user":{"id":"`+userHex+`","name":"Asha","role":"admin"}}`)
	})
	mux.HandleFunc("/api/wishlist", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"userId":"`+userHex+`","items":[{"productId":"`+productHex+`"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, baseURL string, store storage.Storage) (*App, *notice.Recorder) {
	t.Helper()
	rec := &notice.Recorder{}
	a, err := New(context.Background(), Options{
		Client:   client.New(baseURL),
		Storage:  store,
		Notifier: rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return a, rec
}

func TestLoginPersistsSessionAndSyncsWishlist(t *testing.T) {
	srv := fakeServer(t)
	store := storage.NewMemoryStorage()
	a, _ := newApp(t, srv.URL, store)

	_, ok := a.CurrentUser()
	assert.False(t, ok)

	user, err := a.Login(context.Background(), "asha@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.True(t, a.IsAdmin())
	assert.Equal(t, "jwt-1", a.Client.Token())

	pid, _ := primitive.ObjectIDFromHex(productHex)
	assert.True(t, a.Wishlist.Contains(pid))

	restored, _ := newApp(t, srv.URL, store)
	u, ok := restored.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, userHex, u.ID.Hex())
	assert.Equal(t, "jwt-1", restored.Client.Token())
	assert.True(t, restored.Wishlist.Contains(pid))
}

func TestLogoutKeepsCart(t *testing.T) {
	srv := fakeServer(t)
	store := storage.NewMemoryStorage()
	a, _ := newApp(t, srv.URL, store)
	ctx := context.Background()

	_, err := a.Login(ctx, "asha@example.com", "pw")
	require.NoError(t, err)
	p := models.Product{ID: primitive.NewObjectID(), Name: "Clove", StockQuantity: 2, Price: 1}
	require.True(t, a.Cart.Add(p, 1))

	require.NoError(t, a.Logout(ctx))
	_, ok := a.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, a.Client.Token())
	assert.Empty(t, a.Wishlist.Items())
	assert.Equal(t, 1, a.Cart.Count())

	var token string
	found, err := store.Load(storage.KeyToken, &token)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoginFailureNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid email or password"}`)
	}))
	defer srv.Close()

	a, rec := newApp(t, srv.URL, storage.NewMemoryStorage())
	_, err := a.Login(context.Background(), "a@x.io", "bad")
	require.Error(t, err)
	assert.Equal(t, notice.Notice{Kind: notice.Error, Message: "invalid email or password"}, rec.Last())
	_, ok := a.CurrentUser()
	assert.False(t, ok)
}

func TestThemeToggleIsPersisted(t *testing.T) {
	store := storage.NewMemoryStorage()
	a, _ := newApp(t, "http://127.0.0.1:0", store)
	assert.Equal(t, ThemeLight, a.Theme())
	assert.Equal(t, ThemeDark, a.ToggleTheme())

	again, _ := newApp(t, "http://127.0.0.1:0", store)
	assert.Equal(t, ThemeDark, again.Theme())
	assert.Equal(t, ThemeLight, again.ToggleTheme())
}
