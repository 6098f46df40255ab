// Package httpsurface is a concrete HTTP carrier for the request surface:
// a thin transcoding shim from JSON request bodies onto
// internal/surface.Dispatch, wired the way cc-backend's cmd/cc-backend
// wires its own router — gorilla/mux for routing, gorilla/handlers for
// access logging — plus a /metrics endpoint for internal/metrics.
package httpsurface

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"buddyd/internal/attach"
	"buddyd/internal/devlog"
	"buddyd/internal/metrics"
	"buddyd/internal/surface"
	"buddyd/pkg/device"
)

// wireRequest is the JSON shape accepted on the wire; Buf is base64 since
// it may contain arbitrary bytes including embedded zeros before the
// logical terminator.
type wireRequest struct {
	Size int    `json:"size,omitempty"`
	Ref  int    `json:"ref,omitempty"`
	Buf  string `json:"buf,omitempty"`
}

type wireResponse struct {
	ReturnVal int    `json:"return_val"`
	Data      string `json:"data,omitempty"`
}

// Server is the HTTP carrier. It shares one Device and one attach.Gate
// with any other carrier started alongside it (e.g. natssurface), so
// concurrent carriers never observe an inconsistent tree.
type Server struct {
	dev   *device.Device
	gate  *attach.Gate
	name  string
	router *mux.Router
}

// New builds a Server exposing the standard buddyd HTTP surface.
func New(dev *device.Device, gate *attach.Gate, deviceName string) *Server {
	s := &Server{dev: dev, gate: gate, name: deviceName}
	r := mux.NewRouter()
	r.HandleFunc("/v1/params", s.handleParams).Methods(http.MethodGet)
	r.HandleFunc("/v1/alloc", s.handleKind(surface.Get)).Methods(http.MethodPost)
	r.HandleFunc("/v1/free", s.handleKind(surface.Free)).Methods(http.MethodPost)
	r.HandleFunc("/v1/write", s.handleKind(surface.Write)).Methods(http.MethodPost)
	r.HandleFunc("/v1/read", s.handleKind(surface.Read)).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the wrapped HTTP handler, with access logging applied
// the way cc-backend wraps its router with gorilla/handlers.
func (s *Server) Handler() http.Handler {
	return handlers.CombinedLoggingHandler(devlogWriter{}, s.router)
}

// devlogWriter adapts the Info-level devlog sink to io.Writer for
// gorilla/handlers' access log, so HTTP access lines go through the same
// leveled logger as everything else in the process.
type devlogWriter struct{}

func (devlogWriter) Write(p []byte) (int, error) {
	devlog.Infof("%s", string(p))
	return len(p), nil
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	p := s.dev.Params()
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleKind(kind surface.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gate.Enter(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		defer s.gate.Leave()

		var wr wireRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&wr)
		}

		req := surface.Request{Kind: kind, Size: wr.Size, Ref: wr.Ref}
		if wr.Buf != "" {
			buf, err := base64.StdEncoding.DecodeString(wr.Buf)
			if err != nil {
				http.Error(w, "invalid base64 buf", http.StatusBadRequest)
				return
			}
			req.Buf = buf
		}

		resp := surface.Dispatch(s.dev, req, func(k surface.Kind) {
			devlog.Warnf("httpsurface: unknown request kind %v", k)
		})

		outcome := metrics.Success
		if resp.ReturnVal < 0 {
			outcome = metrics.Failure
		}
		metrics.ObserveRequest(kind.String(), outcome)

		out := wireResponse{ReturnVal: resp.ReturnVal}
		if resp.Data != nil {
			out.Data = base64.StdEncoding.EncodeToString(resp.Data)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
