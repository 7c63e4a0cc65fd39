package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// modBody is the JSON shape for creating and updating mods
type modBody struct {
	ModID           string `json:"modId"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Version         string `json:"version"`
	Required        *bool  `json:"required"`
	Enabled         *bool  `json:"enabled"`
	OptionalDefault *bool  `json:"optionalDefault"`
	Size            int64  `json:"size"`
	URL             string `json:"url"`
	MD5             string `json:"md5"`
}

// GetMods lists the mods attached to a server
func GetMods(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}
	mods, err := database.GetMods(serverID)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, mods)
}

// CreateMod attaches a new mod to a server
func CreateMod(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	var body modBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.ModID == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a modId")
		return
	}
	if body.Name == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a mod name")
		return
	}
	if body.Size < 0 {
		utils.ErrorJSON(w, http.StatusBadRequest, "Size cannot be negative")
		return
	}

	mod := database.Mod{
		ServerID: serverID,
		ModID:    body.ModID,
		Name:     body.Name,
		Type:     body.Type,
		Version:  body.Version,
		Required: true,
		Enabled:  true,
		Size:     body.Size,
		URL:      body.URL,
		MD5:      body.MD5,
	}
	if mod.Type == "" {
		mod.Type = "Mod"
	}
	if body.Required != nil {
		mod.Required = *body.Required
	}
	if body.Enabled != nil {
		mod.Enabled = *body.Enabled
	}
	if body.OptionalDefault != nil {
		mod.OptionalDefault = *body.OptionalDefault
	}

	if err := database.CreateMod(&mod); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &mod)
}

// UpdateMod applies changes to a mod row
func UpdateMod(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	serverID := params["serverId"]
	// The route regex only admits digits, but the value can still
	// overflow an int
	id, err := strconv.Atoi(params["id"])
	if err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Mod not found")
		return
	}

	mod, err := database.GetMod(serverID, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Mod not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var body modBody
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.ModID != "" {
		mod.ModID = body.ModID
	}
	if body.Name != "" {
		mod.Name = body.Name
	}
	if body.Type != "" {
		mod.Type = body.Type
	}
	if body.Version != "" {
		mod.Version = body.Version
	}
	if body.Required != nil {
		mod.Required = *body.Required
	}
	if body.Enabled != nil {
		mod.Enabled = *body.Enabled
	}
	if body.OptionalDefault != nil {
		mod.OptionalDefault = *body.OptionalDefault
	}
	if body.Size > 0 {
		mod.Size = body.Size
	}
	if body.URL != "" {
		mod.URL = body.URL
	}
	if body.MD5 != "" {
		mod.MD5 = body.MD5
	}

	if err := database.UpdateMod(mod); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, mod)
}

// DeleteMod detaches a mod from a server
func DeleteMod(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	serverID := params["serverId"]
	// The route regex only admits digits, but the value can still
	// overflow an int
	id, err := strconv.Atoi(params["id"])
	if err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Mod not found")
		return
	}

	err = database.DeleteMod(serverID, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Mod not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "Success"})
}
