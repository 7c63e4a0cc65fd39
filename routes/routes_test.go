package routes

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Shykaruu/LauncherAdminPanel/database"
)

// openTestDB points the shared connection at a fresh in-memory database
func openTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	database.MakeDB()
}

// newTestRouter wires the handlers under test the same way main does
func newTestRouter() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/installer", GetInstaller).Methods("GET")
	api.HandleFunc("/installer/complete", CompleteInstaller).Methods("POST")

	api.HandleFunc("/servers", GetServers).Methods("GET")
	api.HandleFunc("/servers", CreateServer).Methods("POST")
	api.HandleFunc("/servers/{serverId}", GetServer).Methods("GET")
	api.HandleFunc("/servers/{serverId}", UpdateServer).Methods("PUT")
	api.HandleFunc("/servers/{serverId}", DeleteServer).Methods("DELETE")

	api.HandleFunc("/servers/{serverId}/mods", GetMods).Methods("GET")
	api.HandleFunc("/servers/{serverId}/mods", CreateMod).Methods("POST")
	api.HandleFunc("/servers/{serverId}/mods/{id:[0-9]+}", UpdateMod).Methods("PUT")
	api.HandleFunc("/servers/{serverId}/mods/{id:[0-9]+}", DeleteMod).Methods("DELETE")

	api.HandleFunc("/servers/{serverId}/files", GetFiles).Methods("GET")
	api.HandleFunc("/servers/{serverId}/files", CreateFile).Methods("POST")
	api.HandleFunc("/servers/{serverId}/files", UpdateFile).Methods("PUT")
	api.HandleFunc("/servers/{serverId}/files", DeleteFile).Methods("DELETE")
	api.HandleFunc("/servers/{serverId}/files/content", FileContent).Methods("GET")
	api.HandleFunc("/servers/{serverId}/files/upload", UploadFile).Methods("POST")
	api.HandleFunc("/servers/{serverId}/files/mkdir", Mkdir).Methods("POST")

	api.HandleFunc("/servers/{serverId}/stats", GetStats).Methods("GET")
	api.HandleFunc("/servers/{serverId}/stats", ReportStat).Methods("POST")

	api.HandleFunc("/config", GetApiConfig).Methods("GET")
	api.HandleFunc("/config", UpdateApiConfig).Methods("PUT")
	api.HandleFunc("/settings", GetSiteSettings).Methods("GET")
	api.HandleFunc("/settings", UpdateSiteSettings).Methods("PUT")
	api.HandleFunc("/settings/logo", UploadLogo).Methods("POST")

	api.HandleFunc("/users", GetUsers).Methods("GET")
	api.HandleFunc("/users", CreateUser).Methods("POST")
	api.HandleFunc("/users/{name}", GetUser).Methods("GET")
	api.HandleFunc("/users/{name}", UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{name}", DeleteUser).Methods("DELETE")
	api.HandleFunc("/users/{name}/permissions", UpdateUserPerms).Methods("PUT")

	api.HandleFunc("/distribution", GetDistribution).Methods("GET")

	router.HandleFunc("/files/site/{path:.*}", ServeSiteFile).Methods("GET")
	router.HandleFunc("/files/{serverId}/{path:.*}", ServeUserFile).Methods("GET")

	return router
}

// seedServer inserts a server straight through the storage layer
func seedServer(t *testing.T, serverID string, loader string) {
	t.Helper()
	require.NoError(t, database.CreateServer(&database.Server{
		ServerID:         serverID,
		Name:             "Server " + serverID,
		MinecraftVersion: "1.20.1",
		LoaderType:       loader,
	}))
}
