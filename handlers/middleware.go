package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"team-project/dashboard/authz"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
	"team-project/dashboard/session"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// RequireDashboard lets a request through only when the signed-in role may
// view dashboardPath. Everyone else is sent to the entry point.
func RequireDashboard(sessions *session.Manager, dashboardPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Identity(r)
			if err != nil {
				http.Redirect(w, r, authz.EntryPoint, http.StatusSeeOther)
				return
			}
			if !authz.CanView(identity.Role, dashboardPath) {
				logging.Logger.Warnf("Event ID: DASHBOARD_FORBIDDEN, Description: %s (%s) tried %s", identity.Username, identity.Role, dashboardPath)
				http.Redirect(w, r, authz.EntryPoint, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request with its status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("Event ID: HTTP_REQUEST")
	})
}
