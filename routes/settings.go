package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// GetApiConfig returns the launcher API configuration, or an empty config
// when none has been saved yet
func GetApiConfig(w http.ResponseWriter, r *http.Request) {
	config, found, err := database.GetApiConfig()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		config = &database.ApiConfig{}
	}
	utils.WriteJSON(w, http.StatusOK, config)
}

// UpdateApiConfig upserts the launcher API configuration singleton
func UpdateApiConfig(w http.ResponseWriter, r *http.Request) {
	var config database.ApiConfig
	err := json.NewDecoder(r.Body).Decode(&config)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := database.SetApiConfig(&config); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, &config)
}

// GetSiteSettings returns the site settings, or empty settings when none
// have been saved yet
func GetSiteSettings(w http.ResponseWriter, r *http.Request) {
	settings, found, err := database.GetSiteSettings()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		settings = &database.SiteSettings{}
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}

// UpdateSiteSettings upserts the site settings singleton, preserving the
// logo path which only changes through UploadLogo
func UpdateSiteSettings(w http.ResponseWriter, r *http.Request) {
	var settings database.SiteSettings
	err := json.NewDecoder(r.Body).Decode(&settings)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, found, err := database.GetSiteSettings()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if found && settings.Logo == "" {
		settings.Logo = existing.Logo
	}

	if err := database.SetSiteSettings(&settings); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, &settings)
}

// UploadLogo stores a new site logo on disk and points the settings row at it
func UploadLogo(w http.ResponseWriter, r *http.Request) {
	// 16 MiB is plenty for a logo
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	upload, header, err := r.FormFile("logo")
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a logo file")
		return
	}
	defer upload.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
	default:
		utils.ErrorJSON(w, http.StatusBadRequest, "Logo must be an image file")
		return
	}

	dir := filepath.Join(UploadsDir, "site")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	target := filepath.Join(dir, "logo"+ext)
	out, err := os.Create(target)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	_, err = io.Copy(out, upload)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	settings, found, err := database.GetSiteSettings()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		settings = &database.SiteSettings{}
	}
	settings.Logo = "/files/site/logo" + ext
	if err := database.SetSiteSettings(settings); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}
