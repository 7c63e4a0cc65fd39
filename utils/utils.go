package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Shykaruu/LauncherAdminPanel/database"
)

// TokenDuration is how long a session token stays valid without activity
const TokenDuration = 6 * time.Hour

// ToJSON converts to json and logs errors. Simply here to reduce code duplication
func ToJSON(v interface{}) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		log.Println(err)
	}
	return out
}

// WriteJSON writes out a response in json form and sets appropriate headers. Should be used by API
func WriteJSON(w http.ResponseWriter, status int, content interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(ToJSON(content))
}

// ErrorJSON writes out an error in json form and sets appropriate headers. Should be used by API
func ErrorJSON(w http.ResponseWriter, status int, err string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := make(map[string]interface{})
	resp["error"] = err
	_, _ = w.Write(ToJSON(&resp))
}

// GenerateToken returns a token representing a logged in user
func GenerateToken() (string, time.Time) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		log.Println(err)
	}
	return fmt.Sprintf("%x", b), time.Now().Add(TokenDuration)
}

// ValidateToken verifies a token exists in the db and isn't expired
func ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	user, err := database.GetUserByToken(token)
	if err != nil || user.TokenExpiration.Before(time.Now()) {
		return false
	}
	return true
}
