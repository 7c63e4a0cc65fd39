package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// serverBody is the JSON shape for creating and updating servers
type serverBody struct {
	ServerID         string `json:"serverId"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	Version          string `json:"version"`
	Address          string `json:"address"`
	MinecraftVersion string `json:"minecraftVersion"`
	LoaderType       string `json:"loaderType"`
	LoaderVersion    string `json:"loaderVersion"`
	MainServer       *bool  `json:"mainServer"`
	Autoconnect      *bool  `json:"autoconnect"`
}

// validLoader reports whether a loader type is one we can distribute
func validLoader(loader string) bool {
	return loader == database.LoaderFabric || loader == database.LoaderForge
}

// GetServers lists all servers
func GetServers(w http.ResponseWriter, r *http.Request) {
	servers, err := database.GetServers()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, servers)
}

// GetServer fetches one server by its external id
func GetServer(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	server, err := database.GetServer(serverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, server)
}

// CreateServer makes a new server configuration along with its loader
// bootstrap mods
func CreateServer(w http.ResponseWriter, r *http.Request) {
	var body serverBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.ServerID == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a serverId")
		return
	}
	if body.Name == "" {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a server name")
		return
	}
	if !validLoader(body.LoaderType) {
		utils.ErrorJSON(w, http.StatusBadRequest, "Loader type must be Fabric or Forge")
		return
	}

	// Refuse duplicates on the external key
	_, err = database.GetServer(body.ServerID)
	if err == nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "A server with this serverId already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	server := database.Server{
		ServerID:         body.ServerID,
		Name:             body.Name,
		Description:      body.Description,
		Icon:             body.Icon,
		Version:          body.Version,
		Address:          body.Address,
		MinecraftVersion: body.MinecraftVersion,
		LoaderType:       body.LoaderType,
		LoaderVersion:    body.LoaderVersion,
	}
	if body.MainServer != nil {
		server.MainServer = *body.MainServer
	}
	if body.Autoconnect != nil {
		server.Autoconnect = *body.Autoconnect
	}

	if err := database.CreateServer(&server); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &server)
}

// UpdateServer applies changes to an existing server. The external id is
// immutable once created.
func UpdateServer(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	server, err := database.GetServer(serverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var body serverBody
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.LoaderType != "" && !validLoader(body.LoaderType) {
		utils.ErrorJSON(w, http.StatusBadRequest, "Loader type must be Fabric or Forge")
		return
	}

	if body.Name != "" {
		server.Name = body.Name
	}
	if body.Description != "" {
		server.Description = body.Description
	}
	if body.Icon != "" {
		server.Icon = body.Icon
	}
	if body.Version != "" {
		server.Version = body.Version
	}
	if body.Address != "" {
		server.Address = body.Address
	}
	if body.MinecraftVersion != "" {
		server.MinecraftVersion = body.MinecraftVersion
	}
	if body.LoaderType != "" {
		server.LoaderType = body.LoaderType
	}
	if body.LoaderVersion != "" {
		server.LoaderVersion = body.LoaderVersion
	}
	if body.MainServer != nil {
		server.MainServer = *body.MainServer
	}
	if body.Autoconnect != nil {
		server.Autoconnect = *body.Autoconnect
	}

	if err := database.UpdateServer(server); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, server)
}

// DeleteServer removes a server, its mods, files and stats, plus its
// upload directory on disk
func DeleteServer(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	err := database.DeleteServer(serverID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Best effort cleanup of the on-disk upload tree
	_ = os.RemoveAll(filepath.Join(UploadsDir, serverID))

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "Success"})
}
