package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shykaruu/LauncherAdminPanel/database"
)

// getManifest fetches and decodes the distribution document
func getManifest(t *testing.T, router http.Handler) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/distribution", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

// modulesOf pulls the modules array of the only server in the document
func modulesOf(t *testing.T, doc map[string]interface{}) []interface{} {
	t.Helper()
	servers, ok := doc["servers"].([]interface{})
	require.True(t, ok)
	require.Len(t, servers, 1)
	server := servers[0].(map[string]interface{})
	modules, ok := server["modules"].([]interface{})
	require.True(t, ok)
	return modules
}

func TestDistributionMissingApiConfig(t *testing.T) {
	openTestDB(t)
	seedServer(t, "main", database.LoaderFabric)
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/distribution", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "servers")
}

func TestDistributionOptionalMarker(t *testing.T) {
	openTestDB(t)
	require.NoError(t, database.SetApiConfig(&database.ApiConfig{DiscordClientID: "client"}))
	seedServer(t, "main", database.LoaderFabric)

	require.NoError(t, database.CreateMod(&database.Mod{
		ServerID: "main", ModID: "dev.optional:map", Name: "Minimap",
		Type: "Mod", Required: false, OptionalDefault: true,
	}))
	require.NoError(t, database.CreateMod(&database.Mod{
		ServerID: "main", ModID: "dev.required:core", Name: "Core",
		Type: "Mod", Required: true, OptionalDefault: true,
	}))

	doc := getManifest(t, newTestRouter())
	modules := modulesOf(t, doc)
	// Two seeded libraries plus the two mods above
	require.Len(t, modules, 4)

	byID := make(map[string]map[string]interface{})
	for _, m := range modules {
		module := m.(map[string]interface{})
		byID[module["id"].(string)] = module
	}

	optional := byID["dev.optional:map"]
	require.NotNil(t, optional)
	marker, ok := optional["required"].(map[string]interface{})
	require.True(t, ok, "optional mod must carry a required marker")
	assert.Equal(t, false, marker["value"])
	assert.Equal(t, true, marker["def"])

	// Required mods omit the marker entirely, regardless of optionalDefault
	required := byID["dev.required:core"]
	require.NotNil(t, required)
	_, present := required["required"]
	assert.False(t, present)

	// Seeded bootstrap pair keeps the Library kind, other mods follow the loader
	assert.Equal(t, "Library", byID[database.DefaultServerMods[0].ModID]["type"])
	assert.Equal(t, "FabricMod", optional["type"])
}

func TestDistributionForgeModuleKind(t *testing.T) {
	openTestDB(t)
	require.NoError(t, database.SetApiConfig(&database.ApiConfig{}))
	seedServer(t, "forge", database.LoaderForge)
	require.NoError(t, database.CreateMod(&database.Mod{
		ServerID: "forge", ModID: "dev.some:mod", Name: "Some Mod", Type: "Mod", Required: true,
	}))

	doc := getManifest(t, newTestRouter())
	for _, m := range modulesOf(t, doc) {
		module := m.(map[string]interface{})
		if module["id"] == "dev.some:mod" {
			assert.Equal(t, "ForgeMod", module["type"])
			return
		}
	}
	t.Fatal("mod missing from manifest")
}

func TestDistributionIncludesFilesSkipsDirectories(t *testing.T) {
	openTestDB(t)
	require.NoError(t, database.SetApiConfig(&database.ApiConfig{}))
	seedServer(t, "main", database.LoaderFabric)

	require.NoError(t, database.UpsertFile(&database.File{
		ServerID: "main", Path: "config", IsDirectory: true,
	}))
	require.NoError(t, database.UpsertFile(&database.File{
		ServerID: "main", Path: "config/client.toml", Size: 128,
	}))

	doc := getManifest(t, newTestRouter())
	var fileModules []map[string]interface{}
	for _, m := range modulesOf(t, doc) {
		module := m.(map[string]interface{})
		if module["type"] == "File" {
			fileModules = append(fileModules, module)
		}
	}
	require.Len(t, fileModules, 1)
	assert.Equal(t, "config/client.toml", fileModules[0]["id"])
	assert.Equal(t, "client.toml", fileModules[0]["name"])
	artifact := fileModules[0]["artifact"].(map[string]interface{})
	assert.Equal(t, "/files/main/config/client.toml", artifact["url"])
	assert.Equal(t, float64(128), artifact["size"])
}

func TestDistributionDiscordDefaults(t *testing.T) {
	openTestDB(t)
	require.NoError(t, database.SetApiConfig(&database.ApiConfig{DiscordClientID: "123"}))

	doc := getManifest(t, newTestRouter())
	discord := doc["discord"].(map[string]interface{})
	assert.Equal(t, "123", discord["clientId"])
	assert.Equal(t, "Launcher", discord["smallImageText"])
	assert.Equal(t, "logo", discord["smallImageID"])
	assert.Equal(t, "", doc["rss"])
	assert.Equal(t, "1.0.0", doc["version"])
}
