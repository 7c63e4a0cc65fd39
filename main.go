package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/routes"
)

func main() {
	// Read configuration
	config := (&Config{}).read()
	routes.UploadsDir = config.UploadsDir
	routes.PublicURL = config.PublicURL

	// Make DB connection
	err := database.ConnectDB("postgres")
	if err != nil {
		panic("failed to connect database")
	}

	// Create all the tables with constraints and add all necessary starting information
	// if it doesn't already exist
	database.MakeDB()

	// Create new base router for app
	router := mux.NewRouter()

	// Handlers

	// Handle logins
	router.HandleFunc("/login", routes.Login).Methods("POST")
	// Handle logouts
	router.HandleFunc("/logout", routes.Logout).Methods("POST")

	// Handle API calls
	api := router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = NotFound{}
	api.MethodNotAllowedHandler = MethodNotAllowed{}

	// Handle first-run installer state
	api.HandleFunc("/installer", routes.GetInstaller).Methods("GET")
	api.HandleFunc("/installer/complete", routes.CompleteInstaller).Methods("POST")

	// Handle calls to list servers
	api.HandleFunc("/servers", routes.GetServers).Methods("GET")
	// Handle calls to create servers
	api.HandleFunc("/servers", routes.CreateServer).Methods("POST")
	// Handle calls to view a server
	api.HandleFunc("/servers/{serverId}", routes.GetServer).Methods("GET")
	// Handle calls to update a server
	api.HandleFunc("/servers/{serverId}", routes.UpdateServer).Methods("PUT")
	// Handle calls to delete servers
	api.HandleFunc("/servers/{serverId}", routes.DeleteServer).Methods("DELETE")

	// Handle mods attached to a server
	api.HandleFunc("/servers/{serverId}/mods", routes.GetMods).Methods("GET")
	api.HandleFunc("/servers/{serverId}/mods", routes.CreateMod).Methods("POST")
	api.HandleFunc("/servers/{serverId}/mods/{id:[0-9]+}", routes.UpdateMod).Methods("PUT")
	api.HandleFunc("/servers/{serverId}/mods/{id:[0-9]+}", routes.DeleteMod).Methods("DELETE")

	// Handle the per-server virtual filesystem
	api.HandleFunc("/servers/{serverId}/files", routes.GetFiles).Methods("GET")
	api.HandleFunc("/servers/{serverId}/files", routes.CreateFile).Methods("POST")
	api.HandleFunc("/servers/{serverId}/files", routes.UpdateFile).Methods("PUT")
	api.HandleFunc("/servers/{serverId}/files", routes.DeleteFile).Methods("DELETE")
	api.HandleFunc("/servers/{serverId}/files/content", routes.FileContent).Methods("GET")
	api.HandleFunc("/servers/{serverId}/files/upload", routes.UploadFile).Methods("POST")
	api.HandleFunc("/servers/{serverId}/files/mkdir", routes.Mkdir).Methods("POST")

	// Handle server statistics history and the public ingestion endpoint
	api.HandleFunc("/servers/{serverId}/stats", routes.GetStats).Methods("GET")
	api.HandleFunc("/servers/{serverId}/stats", routes.ReportStat).Methods("POST")

	// Handle the launcher API configuration
	api.HandleFunc("/config", routes.GetApiConfig).Methods("GET")
	api.HandleFunc("/config", routes.UpdateApiConfig).Methods("PUT")

	// Handle site settings
	api.HandleFunc("/settings", routes.GetSiteSettings).Methods("GET")
	api.HandleFunc("/settings", routes.UpdateSiteSettings).Methods("PUT")
	api.HandleFunc("/settings/logo", routes.UploadLogo).Methods("POST")

	// Handle panel accounts and their permissions
	api.HandleFunc("/users", routes.GetUsers).Methods("GET")
	api.HandleFunc("/users", routes.CreateUser).Methods("POST")
	api.HandleFunc("/users/{name}", routes.GetUser).Methods("GET")
	api.HandleFunc("/users/{name}", routes.UpdateUser).Methods("PUT")
	api.HandleFunc("/users/{name}", routes.DeleteUser).Methods("DELETE")
	api.HandleFunc("/users/{name}/permissions", routes.UpdateUserPerms).Methods("PUT")
	api.HandleFunc("/permissions", routes.GetPermissions).Methods("GET")

	// Handle the distribution manifest launcher clients poll
	api.HandleFunc("/distribution", routes.GetDistribution).Methods("GET")

	// Handle websocket connections for server stats
	api.HandleFunc("/ws/stats", routes.WSStatsHandler)

	// Handle public downloads of site assets and uploaded files. The site
	// route must come first so "site" never resolves as a server id.
	router.HandleFunc("/files/site/{path:.*}", routes.ServeSiteFile).Methods("GET")
	router.HandleFunc("/files/{serverId}/{path:.*}", routes.ServeUserFile).Methods("GET")

	// Handle static traffic
	router.PathPrefix("/").Handler(
		http.FileServer(HTMLStrippingFileSystem{http.Dir(config.StaticDir)})).Methods("GET")

	// Add printing path to screen per route
	router.Use(printPath)

	// See if a user is authenticated before allowing mutations
	router.Use(checkAuthenticated)

	// Create http server
	srv := &http.Server{
		Handler:      router,
		Addr:         fmt.Sprintf("%s:%s", config.Listen, config.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// Start server
	log.Println("Web server is now listening for connections")
	if config.UseSSL {
		log.Fatal(srv.ListenAndServeTLS("certs/cert.crt", "certs/key.pem"))
	} else {
		log.Fatal(srv.ListenAndServe())
	}
}
