package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// Login handler. Issues a session token cookie on a correct password
func Login(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Username == "" || body.Password == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a username and password")
		return
	}

	user, err := database.GetUserByName(body.Username)
	if err != nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword(user.Password, []byte(body.Password)) != nil {
		utils.ErrorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// See if a token already exists that isn't expired
	now := time.Now()
	if now.Before(user.TokenExpiration) {
		// Keep the old token, just slide the expiration
		user.TokenExpiration = now.Add(utils.TokenDuration)
	} else {
		// Make a new token
		user.Token, user.TokenExpiration = utils.GenerateToken()
	}
	if err := database.UpdateUser(user); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "token",
		Value:    user.Token,
		Expires:  user.TokenExpiration,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteJSON(w, http.StatusOK, user)
}

// Logout handler. Expires the session token on both sides
func Logout(w http.ResponseWriter, r *http.Request) {
	tokenCookie, err := r.Cookie("token")
	if err == nil {
		user, err := database.GetUserByToken(tokenCookie.Value)
		if err == nil {
			user.Token = ""
			user.TokenExpiration = time.Time{}
			_ = database.UpdateUser(user)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "Success"})
}
