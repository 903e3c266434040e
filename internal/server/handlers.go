package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
	"github.com/abhaystar2004/dynamic-form/pkg/model"
	"github.com/abhaystar2004/dynamic-form/pkg/render"
	"github.com/abhaystar2004/dynamic-form/pkg/schema"
	"github.com/abhaystar2004/dynamic-form/pkg/store"
)

const (
	mimeJSON     = "application/json"
	// entryIDField pins an entry action to an entry ID so a stale index from
	// another tab cannot hit the wrong entry.
	entryIDField = "entryId"

	msgSessionExpired = "Your session has expired. Please try again."
	msgUnknownForm    = "Unknown form type."
	msgMissingEntry   = "That entry no longer exists."
	msgUnknownField   = "This field is not part of the form."
	msgInternal       = "Something went wrong. Please try again."
)

// outcome is what an action hands back for the response.
type outcome struct {
	snapshot controller.Snapshot
	// rejected holds raw values the controller refused, by field name.
	rejected map[string]string
	err      error
}

// stateResponse is the JSON body of /api/state and of actions requested with
// Accept: application/json.
type stateResponse struct {
	controller.Snapshot
	Rejected map[string]string `json:"rejected,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type actionFunc func(ctx context.Context, r *http.Request, sess *session) outcome

// session returns the caller's session, starting one and setting the cookie
// when the request carries none or an expired one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, error) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions.lookup(cookie.Value); ok {
			return sess, nil
		}
	}
	sess, err := s.sessions.create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// action wraps a state-changing POST: it resolves the session, checks the
// CSRF token and runs fn with the session locked.
func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(w, r)
		if err != nil {
			s.logger.Error("session start failed", "error", err)
			http.Error(w, msgInternal, http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		if !validCSRF(sess.csrf, r.PostForm.Get(render.CSRFFieldName)) {
			s.respond(w, r, sess, outcome{snapshot: sess.ctrl.Snapshot(), err: ErrBadCSRF})
			return
		}

		sess.mu.Lock()
		out := fn(r.Context(), r, sess)
		sess.mu.Unlock()
		s.respond(w, r, sess, out)
	}
}

// validCSRF compares tokens in constant time. An empty expected token never
// matches.
func validCSRF(expected, got string) bool {
	return expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func dispatch(ctx context.Context, sess *session, cmd controller.Command) outcome {
	res, err := sess.ctrl.Dispatch(ctx, cmd)
	if err != nil {
		return outcome{snapshot: sess.ctrl.Snapshot(), err: err}
	}
	if res.Err != nil {
		return outcome{snapshot: sess.ctrl.Snapshot(), err: res.Err}
	}
	return outcome{snapshot: res.Snapshot}
}

func (s *Server) selectFormType(ctx context.Context, r *http.Request, sess *session) outcome {
	return dispatch(ctx, sess, controller.SelectCommand(r.PostForm.Get("formType")))
}

func (s *Server) changeField(ctx context.Context, r *http.Request, sess *session) outcome {
	name := r.PostForm.Get("name")
	out := dispatch(ctx, sess, controller.ChangeCommand(name, r.PostForm.Get("value")))
	if isRejection(out.err) {
		out.rejected = map[string]string{name: rejectionMessage(out.err)}
	}
	return out
}

// submit applies every posted field of the active schema, then submits. A
// refused value stops the request before submission.
func (s *Server) submit(ctx context.Context, r *http.Request, sess *session) outcome {
	snap := sess.ctrl.Snapshot()
	rejected := make(map[string]string)
	for _, field := range snap.Schema.Fields {
		values, posted := r.PostForm[field.Name]
		if !posted || len(values) == 0 {
			continue
		}
		if current, _ := snap.Values.Get(field.Name); current.Raw == values[0] {
			continue
		}
		out := dispatch(ctx, sess, controller.ChangeCommand(field.Name, values[0]))
		switch {
		case out.err == nil:
		case isRejection(out.err):
			rejected[field.Name] = rejectionMessage(out.err)
		default:
			return out
		}
	}
	if len(rejected) > 0 {
		return outcome{
			snapshot: sess.ctrl.Snapshot(),
			rejected: rejected,
			err:      model.ErrInvalidValue,
		}
	}
	return dispatch(ctx, sess, controller.SubmitCommand())
}

func (s *Server) editEntry(ctx context.Context, r *http.Request, sess *session) outcome {
	index, err := entryIndex(r)
	if err != nil {
		return outcome{snapshot: sess.ctrl.Snapshot(), err: err}
	}
	cmd := controller.EditCommand(index)
	cmd.EntryID = r.PostForm.Get(entryIDField)
	return dispatch(ctx, sess, cmd)
}

func (s *Server) deleteEntry(ctx context.Context, r *http.Request, sess *session) outcome {
	index, err := entryIndex(r)
	if err != nil {
		return outcome{snapshot: sess.ctrl.Snapshot(), err: err}
	}
	cmd := controller.DeleteCommand(index)
	cmd.EntryID = r.PostForm.Get(entryIDField)
	return dispatch(ctx, sess, cmd)
}

func (s *Server) dismiss(ctx context.Context, _ *http.Request, sess *session) outcome {
	return dispatch(ctx, sess, controller.DismissCommand())
}

func entryIndex(r *http.Request) (int, error) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrBadIndex
	}
	return index, nil
}

// respond redirects HTML clients back to the page on success and re-renders
// it with the failure otherwise. JSON clients always get the state.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, out outcome) {
	status := statusFor(out.err)
	if out.err != nil {
		attrs := []any{"path", r.URL.Path, "status", status, "error", out.err}
		if status >= http.StatusInternalServerError {
			sess.logger.Error("action failed", attrs...)
		} else {
			sess.logger.Info("action rejected", attrs...)
		}
	}

	if wantsJSON(r) {
		body := stateResponse{Snapshot: out.snapshot, Rejected: out.rejected}
		if out.err != nil {
			body.Error = formError(out.err)
			if body.Error == "" {
				body.Error = http.StatusText(status)
			}
		}
		s.writeJSON(w, status, body)
		return
	}
	if out.err == nil {
		http.Redirect(w, r, render.DefaultRoutes().Page, http.StatusSeeOther)
		return
	}

	var formErrors []string
	if msg := formError(out.err); msg != "" {
		formErrors = append(formErrors, msg)
	}
	s.renderPage(w, r, sess, out.snapshot, status, out.rejected, formErrors)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error("session start failed", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	s.renderPage(w, r, sess, sess.ctrl.Snapshot(), http.StatusOK, nil, nil)
}

// renderPage renders snap with the page renderer, or with the renderer named
// by the format query parameter.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *session, snap controller.Snapshot, status int, rejected map[string]string, formErrors []string) {
	name := s.pageRenderer
	if format := r.URL.Query().Get("format"); format != "" {
		if !s.renderers.Has(format) {
			http.Error(w, "unknown format", http.StatusNotAcceptable)
			return
		}
		name = format
	}

	var fieldErrors map[string][]string
	if len(rejected) > 0 {
		fieldErrors = make(map[string][]string, len(rejected))
		for field, msg := range rejected {
			fieldErrors[field] = []string{msg}
		}
	}
	opts := render.RenderOptions{
		Title:      s.title,
		Hidden:     render.MergeHiddenFields(nil, render.CSRFToken(sess.csrf)),
		Errors:     fieldErrors,
		FormErrors: formErrors,
		Routes:     render.DefaultRoutes(),
		Theme:      s.theme,
	}
	body, contentType, err := s.renderers.Render(r.Context(), name, snap, opts)
	if err != nil {
		sess.logger.Error("render failed", "renderer", name, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error("session start failed", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, stateResponse{Snapshot: sess.ctrl.Snapshot()})
}

func (s *Server) handleForms(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Schemas())
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", mimeJSON)
	_, _ = w.Write(s.openapi)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", mimeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), mimeJSON)
}

func isRejection(err error) bool {
	return errors.Is(err, model.ErrInvalidValue) || errors.Is(err, controller.ErrUnknownField)
}

// rejectionMessage extracts the user-facing reason from a refused change.
func rejectionMessage(err error) string {
	if errors.Is(err, controller.ErrUnknownField) {
		return msgUnknownField
	}
	msg := err.Error()
	marker := model.ErrInvalidValue.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// formError returns the page-level message for err; field-level failures
// return "" since they are shown inline.
func formError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadCSRF), errors.Is(err, controller.ErrStopped):
		return msgSessionExpired
	case errors.Is(err, schema.ErrUnknownFormType):
		return msgUnknownForm
	case errors.Is(err, store.ErrIndexOutOfRange), errors.Is(err, ErrBadIndex):
		return msgMissingEntry
	case statusFor(err) == http.StatusUnprocessableEntity:
		return ""
	default:
		return msgInternal
	}
}
