package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// UploadsDir is the root of the on-disk file store, one subdirectory per
// server. Set from config at startup.
var UploadsDir = "uploads"

// ErrBadPath rejects paths that would escape a server's upload directory
var ErrBadPath = errors.New("path escapes the server directory")

// cleanUserPath normalizes a slash-separated relative path and refuses
// anything that climbs out of the server directory
func cleanUserPath(p string) (string, error) {
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", ErrBadPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrBadPath
	}
	return cleaned, nil
}

// diskPath maps a cleaned relative path to its location under UploadsDir
func diskPath(serverID, cleaned string) string {
	return filepath.Join(UploadsDir, serverID, filepath.FromSlash(cleaned))
}

// GetFiles lists a server's files, optionally scoped to a path and its
// children via the ?path= filter
func GetFiles(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	filter := r.URL.Query().Get("path")
	if filter != "" {
		cleaned, err := cleanUserPath(filter)
		if err != nil {
			utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
			return
		}
		filter = cleaned
	}

	files, err := database.GetFiles(serverID, filter)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, files)
}

// CreateFile makes an empty file or directory node on disk and records it
func CreateFile(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	body := struct {
		Path        string `json:"path"`
		IsDirectory bool   `json:"isDirectory"`
		IsSticky    bool   `json:"isSticky"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	cleaned, err := cleanUserPath(body.Path)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	// Disk first, then the row. The two are not transactional.
	target := diskPath(serverID, cleaned)
	if body.IsDirectory {
		err = os.MkdirAll(target, 0o755)
	} else {
		if err = os.MkdirAll(filepath.Dir(target), 0o755); err == nil {
			var f *os.File
			f, err = os.OpenFile(target, os.O_CREATE|os.O_WRONLY, 0o644)
			if err == nil {
				_ = f.Close()
			}
		}
	}
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	file := database.File{
		ServerID:     serverID,
		Path:         cleaned,
		IsDirectory:  body.IsDirectory,
		IsSticky:     body.IsSticky,
		LastModified: time.Now(),
	}
	if err := database.UpsertFile(&file); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &file)
}

// Mkdir makes a directory node. Same effect as CreateFile with
// isDirectory set, kept as its own route for the frontend browser.
func Mkdir(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	body := struct {
		Path string `json:"path"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	cleaned, err := cleanUserPath(body.Path)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	if err := os.MkdirAll(diskPath(serverID, cleaned), 0o755); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	file := database.File{
		ServerID:     serverID,
		Path:         cleaned,
		IsDirectory:  true,
		LastModified: time.Now(),
	}
	if err := database.UpsertFile(&file); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &file)
}

// UpdateFile renames a node or toggles its sticky flag. Directory renames
// rewrite the paths of everything nested under them.
func UpdateFile(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	body := struct {
		Path     string `json:"path"`
		NewPath  string `json:"newPath"`
		IsSticky *bool  `json:"isSticky"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	cleaned, err := cleanUserPath(body.Path)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	file, err := database.GetFile(serverID, cleaned)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "File not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if body.IsSticky != nil {
		file.IsSticky = *body.IsSticky
	}

	if body.NewPath != "" {
		newCleaned, err := cleanUserPath(body.NewPath)
		if err != nil {
			utils.ErrorJSON(w, http.StatusBadRequest, "Invalid new path")
			return
		}

		// Disk first, then the rows
		if err := os.MkdirAll(filepath.Dir(diskPath(serverID, newCleaned)), 0o755); err != nil {
			utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if err := os.Rename(diskPath(serverID, cleaned), diskPath(serverID, newCleaned)); err != nil {
			utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if file.IsDirectory {
			// Rewrite children row paths under the renamed directory
			children, err := database.GetFiles(serverID, cleaned)
			if err != nil {
				utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			for i := range children {
				if children[i].Path == cleaned {
					continue
				}
				children[i].Path = newCleaned + strings.TrimPrefix(children[i].Path, cleaned)
				if err := database.UpdateFile(&children[i]); err != nil {
					utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
					return
				}
			}
		}
		file.Path = newCleaned
	}

	file.LastModified = time.Now()
	if err := database.UpdateFile(file); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, file)
}

// DeleteFile removes a node from disk and drops its rows, including
// everything nested under a directory
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	cleaned, err := cleanUserPath(r.URL.Query().Get("path"))
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	if _, err := database.GetFile(serverID, cleaned); errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "File not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Disk first, then the rows. The two are not transactional.
	if err := os.RemoveAll(diskPath(serverID, cleaned)); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := database.DeleteFiles(serverID, cleaned); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "Success"})
}

// FileContent streams the bytes of an uploaded file
func FileContent(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]

	cleaned, err := cleanUserPath(r.URL.Query().Get("path"))
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	file, err := database.GetFile(serverID, cleaned)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ErrorJSON(w, http.StatusNotFound, "File not found")
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if file.IsDirectory {
		utils.ErrorJSON(w, http.StatusBadRequest, "Cannot read a directory")
		return
	}

	http.ServeFile(w, r, diskPath(serverID, cleaned))
}

// UploadFile stores a multipart upload on disk and records its row. An
// optional "path" form field places it inside a subdirectory.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	// 256 MiB in-memory cap before spilling to temp files
	if err := r.ParseMultipartForm(256 << 20); err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	upload, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Must supply a file")
		return
	}
	defer upload.Close()

	rel := header.Filename
	if dir := r.FormValue("path"); dir != "" {
		rel = dir + "/" + rel
	}
	cleaned, err := cleanUserPath(rel)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	target := diskPath(serverID, cleaned)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	out, err := os.Create(target)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	size, err := io.Copy(out, upload)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	file := database.File{
		ServerID:     serverID,
		Path:         cleaned,
		Size:         size,
		LastModified: time.Now(),
	}
	if err := database.UpsertFile(&file); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &file)
}

// ServeUserFile is the public download endpoint the distribution manifest
// points launcher clients at
func ServeUserFile(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	serverID := params["serverId"]

	cleaned, err := cleanUserPath(params["path"])
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	file, err := database.GetFile(serverID, cleaned)
	if err != nil || file.IsDirectory {
		utils.ErrorJSON(w, http.StatusNotFound, "File not found")
		return
	}

	http.ServeFile(w, r, diskPath(serverID, cleaned))
}

// ServeSiteFile serves site-wide assets like the uploaded logo. They live
// under uploads/site with no per-server rows backing them, so this goes
// straight to disk.
func ServeSiteFile(w http.ResponseWriter, r *http.Request) {
	cleaned, err := cleanUserPath(mux.Vars(r)["path"])
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, "Invalid path")
		return
	}

	target := filepath.Join(UploadsDir, "site", filepath.FromSlash(cleaned))
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		utils.ErrorJSON(w, http.StatusNotFound, "File not found")
		return
	}

	http.ServeFile(w, r, target)
}
