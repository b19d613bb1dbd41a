package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/House-me/internal/storage"
	"github.com/JamesLuiz/House-me/internal/webhook"
)

const testToken = "123456:TEST-token"

type readyProcessor struct{}

func (readyProcessor) Init(ctx context.Context) error { return nil }
func (readyProcessor) Ready() bool                    { return true }
func (readyProcessor) ProcessUpdate(ctx context.Context, update tgbotapi.Update) error {
	return nil
}

func newTestServer(t *testing.T, users FavoritesReader) http.Handler {
	gin.SetMode(gin.TestMode)
	hook := webhook.NewHandler(readyProcessor{}, webhook.Options{
		Config: webhook.ConfigPresence{BotToken: true, MongoURI: true, APIURL: true},
	})
	return New(hook, users, Options{BotToken: testToken}).Handler()
}

func newUserStore(t *testing.T) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

// signInitData builds Mini App init data signed the way Telegram does.
func signInitData(t *testing.T, userId int64, authDate time.Time) string {
	user, err := json.Marshal(map[string]any{"id": userId, "first_name": "Ada"})
	require.NoError(t, err)

	values := map[string]string{
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
		"query_id":  "AAH",
		"user":      string(user),
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	q.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return q.Encode()
}

func get(h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, newUserStore(t))

	w := get(h, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"House Me Telegram Bot","bot_loaded":true}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, newUserStore(t))

	w := get(h, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","bot_loaded":true,"bot_error":null}`, w.Body.String())
}

func TestHealth_ReportsLoadError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hook := webhook.NewHandler(nil, webhook.Options{LoadErr: errors.New("BOT_TOKEN not set")})
	h := New(hook, newUserStore(t), Options{BotToken: testToken}).Handler()

	w := get(h, "/health", nil)
	assert.JSONEq(t, `{"status":"healthy","bot_loaded":false,"bot_error":"BOT_TOKEN not set"}`, w.Body.String())
}

func TestTelegramRoute(t *testing.T) {
	h := newTestServer(t, newUserStore(t))

	w := get(h, "/api/telegram", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "House Me Bot Status")

	req := httptest.NewRequest(http.MethodPost, "/api/telegram", strings.NewReader(`{"update_id":1}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t, newUserStore(t))

	get(h, "/api/telegram", nil)
	w := get(h, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "houseme_webhook_requests_total")
}

func TestFavorites(t *testing.T) {
	store := newUserStore(t)
	ctx := context.Background()
	_, err := store.AddFavorite(ctx, "42", "h1")
	require.NoError(t, err)
	_, err = store.AddFavorite(ctx, "42", "h2")
	require.NoError(t, err)
	h := newTestServer(t, store)

	w := get(h, "/api/favorites", map[string]string{initDataHeader: signInitData(t, 42, time.Now())})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"favorites":["h1","h2"]}`, w.Body.String())

	w = get(h, "/api/favorites?init_data="+url.QueryEscape(signInitData(t, 7, time.Now())), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
}

func TestFavorites_RejectsBadInitData(t *testing.T) {
	h := newTestServer(t, newUserStore(t))

	w := get(h, "/api/favorites", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tampered := strings.Replace(signInitData(t, 42, time.Now()), "42", "43", 1)
	w = get(h, "/api/favorites", map[string]string{initDataHeader: tampered})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := signInitData(t, 42, time.Now().Add(-48*time.Hour))
	w = get(h, "/api/favorites", map[string]string{initDataHeader: expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFavorites_DatabaseNotInitialized(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	h := newTestServer(t, notReady{store})

	w := get(h, "/api/favorites", map[string]string{initDataHeader: signInitData(t, 42, time.Now())})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type notReady struct {
	*storage.SQLiteStore
}

func (notReady) Initialized() bool { return false }
