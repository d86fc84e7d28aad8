package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	jwttoken "brpgateway/internal/jwt_token"
	platformstrings "brpgateway/pkg/platform/strings"
	"brpgateway/pkg/requestcontext"
)

// Role headers set by the authenticating reverse proxy. The gateway never
// sees credentials itself; it trusts the proxy's identity headers.
const (
	UserHeader  = "X-Auth-Userid"
	RolesHeader = "X-Auth-Roles"
)

// RequiredRole grants access to the BRP resources.
const RequiredRole = "brp_r"

// FunctieprofielPrefix marks the role that selects the MKS application
// profile. Exactly one is expected per user.
const FunctieprofielPrefix = "fp_"

// RequireMKSIdentity authorizes a request from the proxy's role headers and
// derives the MKS operator identity: the user id becomes the gebruiker, the
// functieprofiel role becomes the applicatie. When the proxy forwards an
// access token instead of role headers, the validator extracts the same
// identity from the token claims.
func RequireMKSIdentity(validator *jwttoken.Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := r.Header.Get(UserHeader)
			roles := splitRoles(r.Header.Get(RolesHeader))

			if user == "" && len(roles) == 0 && validator != nil {
				if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					claims, err := validator.Validate(token)
					if err != nil {
						logger.WarnContext(ctx, "request denied, invalid proxy token",
							"request_id", requestcontext.RequestID(ctx), "error", err)
					} else {
						user = claims.PreferredUsername
						roles = claims.Roles
					}
				}
			}

			var functieprofiel string
			hasAccess := false
			for _, role := range roles {
				if role == RequiredRole {
					hasAccess = true
				}
				if strings.HasPrefix(role, FunctieprofielPrefix) && functieprofiel == "" {
					functieprofiel = role
				}
			}

			if user == "" || !hasAccess || functieprofiel == "" {
				logger.WarnContext(ctx, "request denied, missing role or functieprofiel",
					"request_id", requestcontext.RequestID(ctx),
					"has_user", user != "",
					"has_access_role", hasAccess,
				)
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"status":403,"title":"U bent niet geautoriseerd voor deze operatie.","code":"forbidden"}`))
				return
			}

			ctx = requestcontext.WithMKSIdentity(ctx, user, functieprofiel)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func splitRoles(header string) []string {
	if header == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(header, ","))
}
