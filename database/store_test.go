package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB points the global connection at a fresh in-memory database
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

	DB = db
	MakeDB()
}

func makeServer(t *testing.T, serverID string) *Server {
	t.Helper()
	server := Server{
		ServerID:         serverID,
		Name:             "Test " + serverID,
		MinecraftVersion: "1.20.1",
		LoaderType:       LoaderFabric,
		LoaderVersion:    "0.15.11",
	}
	require.NoError(t, CreateServer(&server))
	return &server
}

func TestCreateServerSeedsDefaultMods(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	mods, err := GetMods("main")
	require.NoError(t, err)
	require.Len(t, mods, 2)

	for i, mod := range mods {
		assert.Equal(t, "Library", mod.Type)
		assert.True(t, mod.Required)
		assert.True(t, mod.Enabled)
		assert.Equal(t, DefaultServerMods[i].ModID, mod.ModID)
		assert.Equal(t, DefaultServerMods[i].URL, mod.URL)
	}
}

func TestDeleteServerCascades(t *testing.T) {
	openTestDB(t)
	makeServer(t, "doomed")
	makeServer(t, "survivor")

	require.NoError(t, UpsertFile(&File{ServerID: "doomed", Path: "config/client.toml"}))
	require.NoError(t, UpsertFile(&File{ServerID: "survivor", Path: "config/client.toml"}))
	require.NoError(t, CreateStat(&ServerStat{ServerID: "doomed", ActivePlayers: 3}))
	require.NoError(t, CreateStat(&ServerStat{ServerID: "survivor", ActivePlayers: 7}))

	require.NoError(t, DeleteServer("doomed"))

	_, err := GetServer("doomed")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	mods, err := GetMods("doomed")
	require.NoError(t, err)
	assert.Empty(t, mods)

	files, err := GetFiles("doomed", "")
	require.NoError(t, err)
	assert.Empty(t, files)

	stats, err := GetStats("doomed", 0)
	require.NoError(t, err)
	assert.Empty(t, stats)

	// The other server keeps everything
	mods, err = GetMods("survivor")
	require.NoError(t, err)
	assert.Len(t, mods, 2)
	files, err = GetFiles("survivor", "")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDeleteServerNotFound(t *testing.T) {
	openTestDB(t)
	err := DeleteServer("ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetFilesPrefixSemantics(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	paths := []string{"a/b", "a/b/c.txt", "a/b/d/e.txt", "a/bc", "other.txt"}
	for _, p := range paths {
		require.NoError(t, UpsertFile(&File{ServerID: "main", Path: p}))
	}

	files, err := GetFiles("main", "a/b")
	require.NoError(t, err)

	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, f.Path)
	}
	assert.ElementsMatch(t, []string{"a/b", "a/b/c.txt", "a/b/d/e.txt"}, got)
}

func TestGetFilesPrefixWildcardsAreLiteral(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	// "_" matches any character in an unescaped LIKE, so "my_dir" must
	// not sweep up "myadir"
	paths := []string{"my_dir", "my_dir/a.txt", "myadir", "myadir/other.txt", "100%/b.txt"}
	for _, p := range paths {
		require.NoError(t, UpsertFile(&File{ServerID: "main", Path: p}))
	}

	files, err := GetFiles("main", "my_dir")
	require.NoError(t, err)
	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, f.Path)
	}
	assert.ElementsMatch(t, []string{"my_dir", "my_dir/a.txt"}, got)

	require.NoError(t, DeleteFiles("main", "my_dir"))

	files, err = GetFiles("main", "")
	require.NoError(t, err)
	got = got[:0]
	for _, f := range files {
		got = append(got, f.Path)
	}
	assert.ElementsMatch(t, []string{"myadir", "myadir/other.txt", "100%/b.txt"}, got)
}

func TestCreateModKeepsExplicitFalse(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	mod := Mod{
		ServerID: "main",
		ModID:    "com.example:optifine:1.0.0",
		Name:     "OptiFine",
		Type:     "Mod",
		Required: false,
		Enabled:  false,
	}
	require.NoError(t, CreateMod(&mod))

	loaded, err := GetMod("main", mod.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Required)
	assert.False(t, loaded.Enabled)
}

func TestGetFilesNoFilterReturnsAll(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	require.NoError(t, UpsertFile(&File{ServerID: "main", Path: "a.txt"}))
	require.NoError(t, UpsertFile(&File{ServerID: "main", Path: "b.txt"}))

	files, err := GetFiles("main", "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestUpsertFileRefreshesExistingRow(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	require.NoError(t, UpsertFile(&File{ServerID: "main", Path: "mods/map.jar", Size: 10}))
	require.NoError(t, UpsertFile(&File{ServerID: "main", Path: "mods/map.jar", Size: 99}))

	files, err := GetFiles("main", "mods/map.jar")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(99), files[0].Size)
}

func TestGetStatsRecency(t *testing.T) {
	openTestDB(t)
	makeServer(t, "main")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 30; i++ {
		require.NoError(t, CreateStat(&ServerStat{
			ServerID:      "main",
			ActivePlayers: i,
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// Default limit is 24, newest first
	stats, err := GetStats("main", 0)
	require.NoError(t, err)
	require.Len(t, stats, DefaultStatsLimit)
	assert.Equal(t, 29, stats[0].ActivePlayers)
	assert.Equal(t, 6, stats[len(stats)-1].ActivePlayers)

	stats, err = GetStats("main", 5)
	require.NoError(t, err)
	require.Len(t, stats, 5)
	assert.Equal(t, 29, stats[0].ActivePlayers)
}

func TestGetLatestStatPlaceholder(t *testing.T) {
	openTestDB(t)
	makeServer(t, "fresh")

	stat, err := GetLatestStat("fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", stat.ServerID)
	assert.Zero(t, stat.ActivePlayers)
	assert.Zero(t, stat.CurrentBandwidth)
	assert.Zero(t, stat.TotalBandwidth)
	assert.Zero(t, stat.TotalSessionTime)
}

func TestSingletonSettingsUpsert(t *testing.T) {
	openTestDB(t)

	require.NoError(t, SetApiConfig(&ApiConfig{DiscordClientID: "first"}))
	require.NoError(t, SetApiConfig(&ApiConfig{DiscordClientID: "second", RSSURL: "https://example.com/rss"}))

	var count int64
	require.NoError(t, DB.Model(&ApiConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	config, found, err := GetApiConfig()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", config.DiscordClientID)
	assert.Equal(t, "https://example.com/rss", config.RSSURL)

	require.NoError(t, SetSiteSettings(&SiteSettings{Name: "one"}))
	require.NoError(t, SetSiteSettings(&SiteSettings{Name: "two"}))
	require.NoError(t, DB.Model(&SiteSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	now := time.Now()
	require.NoError(t, SetInstallerSettings(&InstallerSettings{Installed: true, InstalledAt: &now}))
	require.NoError(t, SetInstallerSettings(&InstallerSettings{Installed: true, InstalledAt: &now}))
	require.NoError(t, DB.Model(&InstallerSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetUserPermissions(t *testing.T) {
	openTestDB(t)

	user := User{Username: "mod", Email: "mod@example.com", Password: []byte("x"), Role: RoleModerator}
	require.NoError(t, CreateUser(&user))

	require.NoError(t, SetUserPermissions(user.ID, []string{"manage_servers", "view_stats"}))
	loaded, err := GetUserByName("mod")
	require.NoError(t, err)
	assert.Len(t, loaded.Permissions, 2)

	// Replacement, not accumulation
	require.NoError(t, SetUserPermissions(user.ID, []string{"manage_mods"}))
	loaded, err = GetUserByName("mod")
	require.NoError(t, err)
	require.Len(t, loaded.Permissions, 1)
	assert.Equal(t, "manage_mods", loaded.Permissions[0].Permission.Name)

	// Unknown permission names roll the whole change back
	err = SetUserPermissions(user.ID, []string{"launch_nukes"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	loaded, err = GetUserByName("mod")
	require.NoError(t, err)
	assert.Len(t, loaded.Permissions, 1)
}

func TestHasPermission(t *testing.T) {
	openTestDB(t)

	admin := User{Username: "root", Email: "root@example.com", Password: []byte("x"), Role: RoleAdmin}
	require.NoError(t, CreateUser(&admin))
	limited := User{Username: "helper", Email: "helper@example.com", Password: []byte("x"), Role: RoleUser}
	require.NoError(t, CreateUser(&limited))
	require.NoError(t, SetUserPermissions(limited.ID, []string{"view_stats"}))

	assert.True(t, HasPermission(&admin, "manage_servers"))
	assert.True(t, HasPermission(&limited, "view_stats"))
	assert.False(t, HasPermission(&limited, "manage_servers"))
}
