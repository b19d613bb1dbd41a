package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const (
	bodyOK               = "OK"
	bodyProcessingError  = "Error processing update"
	bodyMethodNotAllowed = "Method not allowed"
	bodyUnauthorized     = "Unauthorized"
	contentTypeText      = "text/plain; charset=utf-8"
	contentTypeHTML      = "text/html; charset=utf-8"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "houseme",
	Subsystem: "webhook",
	Name:      "requests_total",
	Help:      "Webhook requests, by method and response status.",
}, []string{"method", "code"})

// Processor is the bot side of the webhook.
type Processor interface {
	Init(ctx context.Context) error
	Ready() bool
	ProcessUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Request is the plain hosting convention: a method, headers and a body that
// is either raw JSON text or an already decoded object.
type Request struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Response mirrors Request for the reply.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// ConfigPresence tells the status page which required settings are set.
type ConfigPresence struct {
	BotToken bool
	MongoURI bool
	APIURL   bool
}

// Options configure a Handler.
type Options struct {
	Config ConfigPresence
	// Secret, when set, must match the secret token header of every POST.
	Secret string
	// LoadErr is reported when the bot could not be constructed. The handler
	// then serves the error page and rejects updates.
	LoadErr error
}

// Handler translates webhook requests into bot updates. The first POST
// initializes the processor; a failed initialization is retried on the next
// update.
type Handler struct {
	proc Processor
	opts Options

	mu          sync.Mutex
	initialized bool
}

func NewHandler(proc Processor, opts Options) *Handler {
	if proc == nil && opts.LoadErr == nil {
		opts.LoadErr = errors.New("bot module not loaded")
	}
	return &Handler{proc: proc, opts: opts}
}

// Loaded reports whether a processor is attached, and the load error if not.
func (h *Handler) Loaded() (bool, error) {
	return h.opts.LoadErr == nil, h.opts.LoadErr
}

// Handle serves one request in the plain convention.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("method", method).Msg("webhook handler panicked")
			resp = textResponse(http.StatusInternalServerError, bodyProcessingError)
		}
		requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	}()

	switch method {
	case http.MethodGet:
		return h.statusPage()
	case http.MethodPost:
		return h.handlePost(ctx, req)
	default:
		log.Warn().Str("method", method).Msg("method not allowed")
		return textResponse(http.StatusMethodNotAllowed, bodyMethodNotAllowed)
	}
}

func (h *Handler) handlePost(ctx context.Context, req Request) Response {
	if h.opts.Secret != "" && header(req.Headers, SecretHeader) != h.opts.Secret {
		log.Warn().Msg("webhook secret token mismatch")
		return textResponse(http.StatusUnauthorized, bodyUnauthorized)
	}

	if h.opts.LoadErr != nil {
		log.Error().Err(h.opts.LoadErr).Msg("bot not initialized, cannot process webhook")
		return textResponse(http.StatusInternalServerError, "Bot not initialized. Error: "+h.opts.LoadErr.Error())
	}

	update, err := decodeUpdate(req.Body)
	if err != nil {
		log.Error().Err(err).Msg("invalid webhook payload")
		return textResponse(http.StatusBadRequest, "Invalid JSON: "+err.Error())
	}

	if err := h.ensureInit(ctx); err != nil {
		log.Error().Err(err).Int("updateId", update.UpdateID).Msg("initialization failed")
		return textResponse(http.StatusInternalServerError, bodyProcessingError)
	}

	if err := h.proc.ProcessUpdate(ctx, update); err != nil {
		log.Error().Err(err).Int("updateId", update.UpdateID).Msg("failed to process update")
		return textResponse(http.StatusInternalServerError, bodyProcessingError)
	}

	log.Debug().Int("updateId", update.UpdateID).Msg("update processed")
	return textResponse(http.StatusOK, bodyOK)
}

func (h *Handler) ensureInit(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}
	if err := h.proc.Init(ctx); err != nil {
		return err
	}
	h.initialized = true
	return nil
}

// decodeUpdate accepts raw JSON text or an already decoded JSON object.
func decodeUpdate(body any) (tgbotapi.Update, error) {
	var raw []byte
	switch v := body.(type) {
	case nil:
		raw = []byte("{}")
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return tgbotapi.Update{}, err
		}
		raw = b
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return tgbotapi.Update{}, err
	}
	return update, nil
}

// ServeGin serves the framework-native convention.
func (h *Handler) ServeGin(c *gin.Context) {
	req := Request{
		Method:  c.Request.Method,
		Headers: make(map[string]string, len(c.Request.Header)),
	}
	for name := range c.Request.Header {
		req.Headers[name] = c.Request.Header.Get(name)
	}

	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid JSON: %s", err)
			return
		}
		req.Body = body
	}

	resp := h.Handle(c.Request.Context(), req)
	for k, v := range resp.Headers {
		if k != "Content-Type" {
			c.Header(k, v)
		}
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
}

func textResponse(code int, body string) Response {
	return Response{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": contentTypeText},
		Body:       body,
	}
}

// header looks a header up by name, ignoring case.
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
