package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// GetInstaller reports whether first-run setup has completed
func GetInstaller(w http.ResponseWriter, r *http.Request) {
	settings, found, err := database.GetInstallerSettings()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	installed := found && settings.Installed
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"installed": installed})
}

// CompleteInstaller creates the first admin account and marks the panel
// installed. Only usable while no install has completed.
func CompleteInstaller(w http.ResponseWriter, r *http.Request) {
	settings, found, err := database.GetInstallerSettings()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if found && settings.Installed {
		utils.ErrorJSON(w, http.StatusBadRequest, "Panel is already installed")
		return
	}

	body := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Username == "" || body.Password == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a username and password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	admin := database.User{
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
		Role:     database.RoleAdmin,
	}
	if err := database.CreateUser(&admin); err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Could not create the admin account")
		return
	}

	now := time.Now()
	err = database.SetInstallerSettings(&database.InstallerSettings{
		Installed:   true,
		InstalledAt: &now,
	})
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, &admin)
}
