package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/view"
)

const maxBodySize = 64 * 1024

// CommandResponse reports a dispatched command. A command that changed
// nothing carries the reason in Error and Code; the request still succeeds.
type CommandResponse struct {
	Command string   `json:"command"`
	Path    []string `json:"path,omitempty"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
}

func newCommandResponse(name string, res view.Result) CommandResponse {
	resp := CommandResponse{Command: name, Path: res.Path}
	if res.Err != nil {
		resp.Error = errors.UserMessage(res.Err)
		resp.Code = string(errors.GetCode(res.Err))
	}
	return resp
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var contentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"pdf": "application/pdf",
	"dot": "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpHooks)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/scene", s.handleScene)
	r.Get("/snapshot.{format}", s.handleSnapshot)
	r.Post("/command", s.handleCommand)
	r.Post("/nodes/{id}/click", s.handleClick)
	r.Post("/background/dblclick", s.handleBackground)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleSaveSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/restore", s.handleRestoreSession)
		r.Delete("/{id}", s.handleDeleteSession)
	})
	r.Get("/ws", s.handleWebsocket)
	return r
}

// httpHooks reports each request to the registered observability hooks.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Scene())
}

// handleSnapshot renders the scene at the in-flight transition's target.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	var scene view.Scene
	err := s.do(r.Context(), func(c *view.Controller) {
		c.Settle()
		scene = c.Scene()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := s.runner.Snapshot(r.Context(), scene, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(data)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read command"))
		return
	}
	cmd, err := view.ParseHostCommand(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.command(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type selectionResponse struct {
	Selected string `json:"selected"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var selected string
	err := s.do(r.Context(), func(c *view.Controller) {
		c.ClickNode(r.Context(), id)
		selected = c.Selected()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Selected: selected})
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	err := s.do(r.Context(), func(c *view.Controller) {
		c.DoubleClickBackground(r.Context())
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{})
}

type saveSessionRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil && err != io.EOF {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode session request"))
			return
		}
	}
	if req.ID != "" {
		if err := errors.ValidateSessionName(req.ID); err != nil {
			s.writeError(w, err)
			return
		}
	}

	sess := session.New(req.ID, s.network, session.DefaultTTL)
	err := s.do(r.Context(), func(c *view.Controller) {
		c.Settle()
		sess.Camera = c.Camera().Transform()
		sess.Selected = c.Selected()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) lookupSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess.Network != s.network {
		s.writeError(w, errors.New(errors.ErrCodeInvalidArgument,
			"session %q is for network %q, serving %q", sess.ID, sess.Network, s.network))
		return
	}
	err = s.do(r.Context(), func(c *view.Controller) {
		c.Restore(r.Context(), sess.Camera, sess.Selected)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.Touch(session.DefaultTTL)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.logger.Warn("touch session", "id", sess.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	scene := s.Scene()
	first, err := json.Marshal(Outbound{Type: MsgScene, Scene: &scene})
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctx := r.Context()
	s.hub.serve(w, r, first, func(c *client, msg Inbound) {
		switch msg.Type {
		case MsgCommand:
			if msg.Command == nil || msg.Command.Command == "" {
				return
			}
			resp, err := s.command(ctx, msg.Command)
			if err != nil {
				return
			}
			s.hub.reply(c, Outbound{Type: MsgResult, Result: &resp})
		case MsgClick:
			s.do(ctx, func(ctrl *view.Controller) { ctrl.ClickNode(ctx, msg.Node) })
		case MsgBackground:
			s.do(ctx, func(ctrl *view.Controller) { ctrl.DoubleClickBackground(ctx) })
		default:
			s.logger.Debug("unknown websocket message", "type", msg.Type, "client", c.id)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodeMissingNode:
		return http.StatusNotFound
	case errors.ErrCodeUnknownCommand, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
