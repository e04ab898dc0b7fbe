package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
	"github.com/chronos-tachyon/xdgmime/lib/mimeresolver"
)

// type RootHandler {{{

// RootHandler assigns each request an X-ID, a request logger and metrics,
// then hands it to Next.
type RootHandler struct {
	Subsystem string
	Metrics   *Metrics
	Next      http.Handler
}

func (h RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := xid.New()
	idStr := id.String()
	r.Header.Set(constants.HeaderXID, idStr)
	w.Header().Set(constants.HeaderXID, idStr)
	w.Header().Set(constants.HeaderServer, "mimed/"+mainutil.AppVersion())
	w.Header().Set(constants.HeaderXCTO, "nosniff")

	logger := log.Logger.With().
		Str("server", h.Subsystem).
		Str("xid", idStr).
		Str("ip", r.RemoteAddr).
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Logger()

	ctx := r.Context()
	ctx = logger.WithContext(ctx)
	ctx = hlog.CtxWithID(ctx, id)
	r = r.WithContext(ctx)

	body := &countingReader{next: r.Body}
	r.Body = body
	sw := &statusWriter{next: w}

	logger.Debug().
		Msg("start request")
	startTime := time.Now()
	h.Metrics.RequestCountByMethod.WithLabelValues(simplifyHTTPMethod(r.Method)).Inc()

	defer func() {
		elapsed := time.Since(startTime)

		panicValue := recover()
		if panicValue != nil {
			if !sw.wroteHeader {
				writeError(sw, http.StatusInternalServerError, "internal error")
			}
			h.Metrics.PanicCount.Inc()
		}

		h.Metrics.ResponseCountByCode.WithLabelValues(simplifyHTTPStatusCode(sw.Status())).Inc()
		h.Metrics.RequestSize.Observe(float64(body.bytes))
		h.Metrics.ResponseDuration.Observe(elapsed.Seconds())

		var event *zerolog.Event
		switch {
		case panicValue != nil:
			event = logger.Error()
			switch x := panicValue.(type) {
			case error:
				event = event.AnErr("panic", x)
			case string:
				event = event.Str("panic", x)
			default:
				event = event.Interface("panic", x)
			}
		case h.Subsystem == constants.SubsystemProm:
			event = logger.Debug()
		default:
			event = logger.Info()
		}
		event.
			Dur("elapsed", elapsed).
			Int("status", sw.Status()).
			Int64("bytesRead", body.bytes).
			Int64("bytesWritten", sw.BytesWritten()).
			Msg("end request")
	}()

	h.Next.ServeHTTP(sw, r)
}

var _ http.Handler = RootHandler{}

// }}}

// type APIHandler {{{

// APIHandler serves the classification endpoints:
//
//	GET  /v1/name?name=<file name>
//	GET  /v1/path?path=<local path>
//	POST /v1/data              (body is the leading bytes of a file)
//
// Every success is a JSON object {"type": "<mime type>"}.
type APIHandler struct {
	Ref *Ref
}

type typeResponse struct {
	Type string `json:"type"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	impl := h.Ref.Get()
	if impl == nil {
		writeError(w, http.StatusServiceUnavailable, "not loaded")
		return
	}
	resolver := impl.Resolver()

	switch r.URL.Path {
	case "/v1/name":
		if !checkMethod(w, r, http.MethodGet, http.MethodHead) {
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter \"name\"")
			return
		}
		writeType(w, r, resolver.TypeForFilename(name))

	case "/v1/path":
		if !checkMethod(w, r, http.MethodGet, http.MethodHead) {
			return
		}
		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter \"path\"")
			return
		}
		writeType(w, r, resolver.TypeForPath(path))

	case "/v1/data":
		if !checkMethod(w, r, http.MethodPost) {
			return
		}
		buf, err := io.ReadAll(io.LimitReader(r.Body, impl.MaxBodyBytes()))
		if err != nil {
			hlog.FromRequest(r).Warn().
				Err(err).
				Msg("failed to read request body")
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		writeType(w, r, resolver.TypeForData(buf))

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

var _ http.Handler = APIHandler{}

// }}}

func checkMethod(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	for _, method := range allowed {
		if r.Method == method {
			return true
		}
	}
	var allow string
	for i, method := range allowed {
		if i > 0 {
			allow += ", "
		}
		allow += method
	}
	w.Header().Set(constants.HeaderAllow, allow)
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	return false
}

func writeType(w http.ResponseWriter, r *http.Request, t mimeresolver.MimeType) {
	hlog.FromRequest(r).Debug().
		Str("type", string(t)).
		Msg("classified")
	writeJSON(w, http.StatusOK, typeResponse{Type: string(t)})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("BUG: failed to marshal response: %w", err))
	}
	raw = append(raw, '\n')
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
