package diag

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

// Middlewares here are plain func(http.Handler) http.Handler,
// router depends on diag so router.MiddlewareFunc can not be used

const requestIDHeader = "x-request-id"

// RequestIDMiddlewareOpt is an option of the request id middleware
type RequestIDMiddlewareOpt func(newID *func() uuid.UUID)

// WithRequestIDGenerator sets a function to generate missing request ids
func WithRequestIDGenerator(newID func() uuid.UUID) RequestIDMiddlewareOpt {
	return func(target *func() uuid.UUID) {
		*target = newID
	}
}

// NewRequestIDMiddleware takes request id from the x-request-id header
// (or generates a new one), puts it to the request context and echoes it back
func NewRequestIDMiddleware(opts ...RequestIDMiddlewareOpt) func(next http.Handler) http.Handler {
	newID := uuid.NewV4
	for _, opt := range opts {
		opt(&newID)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestID := req.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = newID().String()
			}
			w.Header().Set(requestIDHeader, requestID)
			next.ServeHTTP(w, req.WithContext(ContextWithRequestID(req.Context(), requestID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

type logRequestsCfg struct {
	ignorePaths      map[string]bool
	obfuscateHeaders []string
	logger           Logger
	memUsageMb       func() float64
	now              func() time.Time
}

// LogRequestsMiddlewareOpt is an option of the requests logging middleware
type LogRequestsMiddlewareOpt func(*logRequestsCfg)

// IgnorePath will not log requests to given path
func IgnorePath(path string) LogRequestsMiddlewareOpt {
	return func(cfg *logRequestsCfg) {
		cfg.ignorePaths[path] = true
	}
}

// ObfuscateHeaders will log length of given headers instead of values.
// Authorization is always obfuscated
func ObfuscateHeaders(headers ...string) LogRequestsMiddlewareOpt {
	return func(cfg *logRequestsCfg) {
		for _, header := range headers {
			cfg.obfuscateHeaders = append(cfg.obfuscateHeaders, http.CanonicalHeaderKey(header))
		}
	}
}

// WithRequestsLogger sets the logger requests are written to
func WithRequestsLogger(logger Logger) LogRequestsMiddlewareOpt {
	return func(cfg *logRequestsCfg) {
		cfg.logger = logger
	}
}

func flattenAndObfuscate(values map[string][]string, obfuscateKeys ...string) map[string]string {
	flattened := make(map[string]string, len(values))
	for key, val := range values {
		flattened[key] = strings.Join(val, ", ")
	}
	for _, key := range obfuscateKeys {
		if val, ok := flattened[key]; ok {
			flattened[key] = fmt.Sprint("*obfuscated, length=", len(val), "*")
		}
	}
	return flattened
}

func runtimeMemUsageMb() float64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return math.Round(float64(memStats.Alloc)/1024.0/1024.0*1000) / 1000
}

// NewLogRequestsMiddleware logs start and end of every request
func NewLogRequestsMiddleware(opts ...LogRequestsMiddlewareOpt) func(next http.Handler) http.Handler {
	cfg := logRequestsCfg{
		ignorePaths:      map[string]bool{"/v1/healthcheck/ping": true},
		obfuscateHeaders: []string{"Authorization"},
		memUsageMb:       runtimeMemUsageMb,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = CreateLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			path := req.URL.Path
			if cfg.ignorePaths[path] {
				next.ServeHTTP(w, req)
				return
			}

			ip, port, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				cfg.logger.Warn(req.Context(), "Can not parse remote addr: %v", req.RemoteAddr)
				ip = req.RemoteAddr
			}

			cfg.logger.
				WithData(MsgData{
					"method":        req.Method,
					"url":           req.URL.RequestURI(),
					"path":          path,
					"userAgent":     req.UserAgent(),
					"headers":       flattenAndObfuscate(req.Header, cfg.obfuscateHeaders...),
					"query":         flattenAndObfuscate(req.URL.Query()),
					"remoteAddress": ip,
					"remotePort":    port,
					"memoryUsageMb": cfg.memUsageMb(),
				}).
				Info(req.Context(), "BEGIN REQ: %s %s", req.Method, path)

			recorder := &statusRecorder{ResponseWriter: w}
			startedAt := cfg.now()
			next.ServeHTTP(recorder, req)
			duration := cfg.now().Sub(startedAt)

			status := recorder.statusCode()
			cfg.logger.
				WithData(MsgData{
					"statusCode":    status,
					"headers":       flattenAndObfuscate(w.Header()),
					"duration":      duration.Seconds(),
					"memoryUsageMb": cfg.memUsageMb(),
				}).
				Info(req.Context(), "END REQ: %v - %v", status, path)
		})
	}
}

// NewRecoverMiddleware turns a panic in a handler into a 500 response.
// The response follows the same JSON shape the router uses for errors
func NewRecoverMiddleware(logger Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = CreateLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.
					WithError(fmt.Errorf("%v", rec)).
					WithData(MsgData{"stack": string(debug.Stack())}).
					Error(req.Context(), "Recovered from panic while serving %s %s", req.Method, req.URL.Path)

				status := http.StatusInternalServerError
				body, _ := json.Marshal(map[string]interface{}{
					"statusCode": status,
					"error":      http.StatusText(status),
					"message":    http.StatusText(status),
					"code":       "internal",
				})
				w.Header().Set("content-type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write(body)
			}()
			next.ServeHTTP(w, req)
		})
	}
}
