package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pageguard/authz"
)

// Guard returns middleware that evaluates an access policy for every request
// and maps the verdict to a transport response:
//
//	Allow            -> next handler
//	DenyForbidden    -> 403 with the verdict reason
//	DenyNotFound     -> 404 with the verdict reason
//	directory error  -> 500
//
// URL parameters from the chi route context are handed to the policy, so
// owner-based policies can read their configured lookup key.
func Guard(policy authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := authz.Request{
				Principal: PrincipalFromContext(r.Context()),
				Params:    routeParams(r),
				Path:      r.URL.Path,
			}

			verdict, err := policy.Evaluate(r.Context(), req)
			if err != nil {
				slog.ErrorContext(r.Context(), "policy evaluation failed",
					"path", r.URL.Path,
					"principal", req.Principal.Identifier,
					"error", err,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}

			switch verdict.Effect {
			case authz.EffectAllow:
				next.ServeHTTP(w, r)
			case authz.EffectNotFound:
				writeJSONError(w, http.StatusNotFound, verdict.Reason)
			default:
				writeJSONError(w, http.StatusForbidden, verdict.Reason)
			}
		})
	}
}

// routeParams flattens chi URL parameters into a map for policy evaluation.
func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
