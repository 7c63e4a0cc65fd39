package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// validRole reports whether a role name is one the panel knows
func validRole(role string) bool {
	switch role {
	case database.RoleAdmin, database.RoleModerator, database.RoleUser:
		return true
	}
	return false
}

// GetUsers lists all panel accounts
func GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := database.GetUsers()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

// GetUser gets information about a particular account
func GetUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["name"]
	user, err := database.GetUserByName(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// CreateUser makes a new panel account
func CreateUser(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
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
	if body.Role == "" {
		body.Role = database.RoleUser
	}
	if !validRole(body.Role) {
		utils.ErrorJSON(w, http.StatusBadRequest, "Role must be admin, moderator or user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := database.User{
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
		Role:     body.Role,
	}
	if err := database.CreateUser(&user); err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Username or email already taken")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &user)
}

// UpdateUser changes an account's email, role or password
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["name"]
	user, err := database.GetUserByName(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}{}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.Email != "" {
		user.Email = body.Email
	}
	if body.Role != "" {
		if !validRole(body.Role) {
			utils.ErrorJSON(w, http.StatusBadRequest, "Role must be admin, moderator or user")
			return
		}
		user.Role = body.Role
	}
	if body.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.Password = hash
	}

	if err := database.UpdateUser(user); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser removes an account and its permission grants
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["name"]
	err := database.DeleteUser(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "Success"})
}

// UpdateUserPerms replaces the permission grants on an account
func UpdateUserPerms(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["name"]
	user, err := database.GetUserByName(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := struct {
		Permissions []string `json:"permissions"`
	}{}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := database.SetUserPermissions(user.ID, body.Permissions); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorJSON(w, http.StatusBadRequest, "Unknown permission name")
			return
		}
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	updated, err := database.GetUserByName(username)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

// GetPermissions lists the grantable permission catalog
func GetPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := database.GetPermissions()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, perms)
}
