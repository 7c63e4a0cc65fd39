package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// printPath prints the HTTP method and request URI to the screen
func printPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Println(r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

// checkPublicMutation returns whether a mutating route works without a
// session: login, logout, first-run install, and the rate-limited stat
// ingestion. Logout stays public so an already-expired session can still
// be cleared.
func checkPublicMutation(url string) bool {
	if url == "/login" || url == "/logout" || url == "/api/installer/complete" {
		return true
	}
	if strings.HasPrefix(url, "/api/servers/") && strings.HasSuffix(url, "/stats") {
		return true
	}
	return false
}

// checkAuthenticated gates every mutating request behind a valid session
// token. Reads stay public.
func checkAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if checkPublicMutation(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenCookie, err := r.Cookie("token")
		if err != nil || !utils.ValidateToken(tokenCookie.Value) {
			utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		// Slide the token expiration when it's getting close
		user, err := database.GetUserByToken(tokenCookie.Value)
		if err == nil {
			now := time.Now()
			if now.Add(2 * time.Hour).After(user.TokenExpiration) {
				user.TokenExpiration = now.Add(utils.TokenDuration)
				_ = database.UpdateUser(user)
				http.SetCookie(w, &http.Cookie{
					Path:     "/",
					Name:     "token",
					Value:    user.Token,
					Expires:  user.TokenExpiration,
					Secure:   true,
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
				})
			}
		}

		next.ServeHTTP(w, r)
	})
}
