package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderUserID    = "Ax-User-Id"
	HeaderReplayed  = "Idempotent-Replayed"

	// held while the handler runs
	provisionalLockTTL = 60 * time.Second
	// allowed client/server clock skew for Ax-Request-At
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

type axHeaders struct {
	requestID string
	requestAt time.Time
	userID    string
}

// readAxHeaders returns the client-facing message for the first bad header.
func readAxHeaders(req *http.Request) (axHeaders, string) {
	var h axHeaders
	h.requestID = strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
	if h.requestID == "" {
		return h, "missing " + HeaderRequestID
	}
	if !validReqID(h.requestID) {
		return h, "invalid " + HeaderRequestID + " format"
	}

	at, err := parseAxRequestAt(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return h, err.Error()
	}
	now := nowUTC()
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return h, HeaderRequestAt + " too skewed"
	}
	h.requestAt = at

	h.userID = strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderUserID)))
	if h.userID == "" {
		return h, "missing " + HeaderUserID
	}
	if !validReqID(h.userID) {
		return h, "invalid " + HeaderUserID
	}
	return h, ""
}

// IdempotencyMiddleware replays the stored response for a repeated
// (user, method, route, request id). Server errors are not stored, so the
// client may retry them. A nil logger disables logging.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)
	store := idempStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			h, msg := readAxHeaders(req)
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := buildKey(h.userID, req.Method, c.Path(), h.requestID)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			ok, err := store.reserve(ctx, key, idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   h.requestID,
				RequestAtMS: h.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				cur, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency entry load failed", zap.String("key", key), zap.Error(err))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					c.Response().Header().Set(HeaderReplayed, "true")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may be gone by now
			bg, cancelBg := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelBg()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("idempotency entry release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			err = store.finish(bg, key, idempEntry{
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   h.requestID,
				RequestAtMS: h.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				log.Warn("idempotency entry save failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
