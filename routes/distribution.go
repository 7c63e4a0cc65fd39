package routes

import (
	"errors"
	"net/http"
	"path"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// errMissingApiConfig aborts manifest generation before any partial
// document can leak out
var errMissingApiConfig = errors.New("api config has not been set")

// PublicURL prefixes the download links the manifest hands to launcher
// clients. Set from config at startup.
var PublicURL = ""

// Fallbacks for discord presence fields left unset in the API config
const (
	manifestVersion       = "1.0.0"
	defaultSmallImageText = "Launcher"
	defaultSmallImageID   = "logo"
)

// The manifest document is the public contract consumed by the launcher.
// Field names and nesting must not change.

type manifestArtifact struct {
	Size int64  `json:"size"`
	URL  string `json:"url"`
	MD5  string `json:"MD5"`
}

// manifestRequired marks an optional module. Its absence, not a false
// value, is what signals a required module.
type manifestRequired struct {
	Value bool `json:"value"`
	Def   bool `json:"def"`
}

type manifestModule struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Required *manifestRequired `json:"required,omitempty"`
	Artifact manifestArtifact  `json:"artifact"`
}

type manifestServer struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Icon             string           `json:"icon"`
	Version          string           `json:"version"`
	Address          string           `json:"address"`
	MinecraftVersion string           `json:"minecraftVersion"`
	MainServer       bool             `json:"mainServer"`
	Autoconnect      bool             `json:"autoconnect"`
	Modules          []manifestModule `json:"modules"`
}

type manifestDiscord struct {
	ClientID       string `json:"clientId"`
	SmallImageText string `json:"smallImageText"`
	SmallImageID   string `json:"smallImageID"`
}

type manifest struct {
	Version string           `json:"version"`
	Discord manifestDiscord  `json:"discord"`
	RSS     string           `json:"rss"`
	Servers []manifestServer `json:"servers"`
}

// moduleType maps a mod's stored type onto the launcher's module kinds
func moduleType(mod *database.Mod, server *database.Server) string {
	if mod.Type == "Library" {
		return "Library"
	}
	if server.LoaderType == database.LoaderFabric {
		return "FabricMod"
	}
	return "ForgeMod"
}

// buildManifest assembles the distribution document from the database.
// It refuses to emit anything when the API config singleton is missing.
func buildManifest() (*manifest, error) {
	config, found, err := database.GetApiConfig()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errMissingApiConfig
	}

	doc := manifest{
		Version: manifestVersion,
		Discord: manifestDiscord{
			ClientID:       config.DiscordClientID,
			SmallImageText: config.DiscordSmallImageText,
			SmallImageID:   config.DiscordSmallImageID,
		},
		RSS:     config.RSSURL,
		Servers: []manifestServer{},
	}
	if doc.Discord.SmallImageText == "" {
		doc.Discord.SmallImageText = defaultSmallImageText
	}
	if doc.Discord.SmallImageID == "" {
		doc.Discord.SmallImageID = defaultSmallImageID
	}

	servers, err := database.GetServers()
	if err != nil {
		return nil, err
	}

	for i := range servers {
		server := &servers[i]
		entry := manifestServer{
			ID:               server.ServerID,
			Name:             server.Name,
			Description:      server.Description,
			Icon:             server.Icon,
			Version:          server.Version,
			Address:          server.Address,
			MinecraftVersion: server.MinecraftVersion,
			MainServer:       server.MainServer,
			Autoconnect:      server.Autoconnect,
			Modules:          []manifestModule{},
		}

		mods, err := database.GetMods(server.ServerID)
		if err != nil {
			return nil, err
		}
		for j := range mods {
			mod := &mods[j]
			module := manifestModule{
				ID:   mod.ModID,
				Name: mod.Name,
				Type: moduleType(mod, server),
				Artifact: manifestArtifact{
					Size: mod.Size,
					URL:  mod.URL,
					MD5:  mod.MD5,
				},
			}
			if !mod.Required {
				module.Required = &manifestRequired{
					Value: false,
					Def:   mod.OptionalDefault,
				}
			}
			entry.Modules = append(entry.Modules, module)
		}

		files, err := database.GetFiles(server.ServerID, "")
		if err != nil {
			return nil, err
		}
		for j := range files {
			file := &files[j]
			if file.IsDirectory {
				continue
			}
			entry.Modules = append(entry.Modules, manifestModule{
				ID:   file.Path,
				Name: path.Base(file.Path),
				Type: "File",
				Artifact: manifestArtifact{
					Size: file.Size,
					URL:  PublicURL + "/files/" + server.ServerID + "/" + file.Path,
				},
			})
		}

		doc.Servers = append(doc.Servers, entry)
	}

	return &doc, nil
}

// GetDistribution serves the manifest launcher clients poll
func GetDistribution(w http.ResponseWriter, r *http.Request) {
	doc, err := buildManifest()
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Distribution is not configured")
		return
	}
	utils.WriteJSON(w, http.StatusOK, doc)
}
