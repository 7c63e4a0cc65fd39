package database

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStatsLimit is how many samples a stats query returns when the
// caller doesn't ask for a specific amount
const DefaultStatsLimit = 24

// DefaultServerMods is the loader bootstrap pair every new server starts
// with. Seeded in the same transaction as the server insert.
var DefaultServerMods = []Mod{
	{
		ModID:    "net.fabricmc:fabric-loader:0.15.11",
		Name:     "Fabric Loader",
		Type:     "Library",
		Version:  "0.15.11",
		Required: true,
		Enabled:  true,
		URL:      "https://maven.fabricmc.net/net/fabricmc/fabric-loader/0.15.11/fabric-loader-0.15.11.jar",
	},
	{
		ModID:    "net.fabricmc:intermediary:1.20.1",
		Name:     "Intermediary Mappings",
		Type:     "Library",
		Version:  "1.20.1",
		Required: true,
		Enabled:  true,
		URL:      "https://maven.fabricmc.net/net/fabricmc/intermediary/1.20.1/intermediary-1.20.1.jar",
	},
}

// Servers

// CreateServer inserts a server and its bootstrap mods in one transaction
func CreateServer(server *Server) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(server).Error; err != nil {
			return err
		}
		for _, mod := range DefaultServerMods {
			mod.ServerID = server.ServerID
			if err := tx.Create(&mod).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetServers lists every server
func GetServers() ([]Server, error) {
	var servers []Server
	err := DB.Order("id").Find(&servers).Error
	return servers, err
}

// GetServer fetches a server by its external key
func GetServer(serverID string) (*Server, error) {
	var server Server
	err := DB.Where("server_id = ?", serverID).First(&server).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// UpdateServer saves all fields of an already-loaded server
func UpdateServer(server *Server) error {
	return DB.Save(server).Error
}

// DeleteServer removes a server and everything referencing its external key.
// The foreign keys already cascade, the explicit deletes keep the behavior
// identical across drivers.
func DeleteServer(serverID string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("server_id = ?", serverID).Delete(&Mod{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&File{}).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", serverID).Delete(&ServerStat{}).Error; err != nil {
			return err
		}
		result := tx.Where("server_id = ?", serverID).Delete(&Server{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Mods

// GetMods lists all mods attached to a server
func GetMods(serverID string) ([]Mod, error) {
	var mods []Mod
	err := DB.Where("server_id = ?", serverID).Order("id").Find(&mods).Error
	return mods, err
}

// GetMod fetches one mod by row id, scoped to its server
func GetMod(serverID string, id uint) (*Mod, error) {
	var mod Mod
	err := DB.Where("server_id = ? AND id = ?", serverID, id).First(&mod).Error
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// CreateMod inserts a mod row
func CreateMod(mod *Mod) error {
	return DB.Create(mod).Error
}

// UpdateMod saves all fields of an already-loaded mod
func UpdateMod(mod *Mod) error {
	return DB.Save(mod).Error
}

// DeleteMod removes one mod row, scoped to its server
func DeleteMod(serverID string, id uint) error {
	result := DB.Where("server_id = ? AND id = ?", serverID, id).Delete(&Mod{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Files

// escapeLike quotes LIKE wildcards so a path containing "_" or "%" only
// matches itself
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// GetFiles lists a server's file rows. With a path filter it returns the
// exact node plus everything nested under it: "a/b" matches "a/b" and
// "a/b/..." but never siblings like "a/bc".
func GetFiles(serverID string, path string) ([]File, error) {
	var files []File
	query := DB.Where("server_id = ?", serverID)
	if path != "" {
		query = DB.Where(`server_id = ? AND (path = ? OR path LIKE ? ESCAPE '\')`,
			serverID, path, escapeLike(path)+"/%")
	}
	err := query.Order("path").Find(&files).Error
	return files, err
}

// GetFile fetches one file row by its exact path
func GetFile(serverID string, path string) (*File, error) {
	var file File
	err := DB.Where("server_id = ? AND path = ?", serverID, path).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// UpsertFile inserts a file row or refreshes an existing row for the same
// path with the new metadata
func UpsertFile(file *File) error {
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}, {Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_directory", "is_sticky", "size", "last_modified"}),
	}).Create(file).Error
}

// UpdateFile saves all fields of an already-loaded file row
func UpdateFile(file *File) error {
	return DB.Save(file).Error
}

// DeleteFiles removes the row at path and every row nested under it
func DeleteFiles(serverID string, path string) error {
	result := DB.Where(`server_id = ? AND (path = ? OR path LIKE ? ESCAPE '\')`,
		serverID, path, escapeLike(path)+"/%").Delete(&File{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats

// CreateStat appends a stats sample
func CreateStat(stat *ServerStat) error {
	if stat.Timestamp.IsZero() {
		stat.Timestamp = time.Now()
	}
	return DB.Create(stat).Error
}

// GetStats returns the most recent samples for a server, newest first
func GetStats(serverID string, limit int) ([]ServerStat, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	var stats []ServerStat
	err := DB.Where("server_id = ?", serverID).
		Order("timestamp desc").Limit(limit).Find(&stats).Error
	return stats, err
}

// GetLatestStat returns the newest sample for a server, or an all-zero
// placeholder when no sample exists yet
func GetLatestStat(serverID string) (ServerStat, error) {
	var stat ServerStat
	err := DB.Where("server_id = ?", serverID).
		Order("timestamp desc").First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ServerStat{ServerID: serverID}, nil
	}
	return stat, err
}

// Singleton settings tables. Every write is a true upsert on the fixed
// primary key so concurrent first-time writers can't double-insert.

// GetInstallerSettings returns the installer row if one exists
func GetInstallerSettings() (*InstallerSettings, bool, error) {
	var settings InstallerSettings
	err := DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &settings, true, nil
}

// SetInstallerSettings upserts the installer row
func SetInstallerSettings(settings *InstallerSettings) error {
	settings.ID = 1
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

// GetApiConfig returns the API config row if one exists
func GetApiConfig() (*ApiConfig, bool, error) {
	var config ApiConfig
	err := DB.First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &config, true, nil
}

// SetApiConfig upserts the API config row
func SetApiConfig(config *ApiConfig) error {
	config.ID = 1
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(config).Error
}

// GetSiteSettings returns the site settings row if one exists
func GetSiteSettings() (*SiteSettings, bool, error) {
	var settings SiteSettings
	err := DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &settings, true, nil
}

// SetSiteSettings upserts the site settings row
func SetSiteSettings(settings *SiteSettings) error {
	settings.ID = 1
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

// Users

// GetUsers lists every account with its permission grants
func GetUsers() ([]User, error) {
	var users []User
	err := DB.Preload("Permissions.Permission").Order("id").Find(&users).Error
	return users, err
}

// GetUserByName fetches an account by username
func GetUserByName(username string) (*User, error) {
	var user User
	err := DB.Preload("Permissions.Permission").
		Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByToken fetches the account a session token belongs to
func GetUserByToken(token string) (*User, error) {
	var user User
	err := DB.Where("token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts an account
func CreateUser(user *User) error {
	return DB.Create(user).Error
}

// UpdateUser saves all fields of an already-loaded account
func UpdateUser(user *User) error {
	return DB.Save(user).Error
}

// DeleteUser removes an account and its permission grants
func DeleteUser(username string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&PermsPerUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// GetPermissions lists the grantable permission catalog
func GetPermissions() ([]Permission, error) {
	var perms []Permission
	err := DB.Order("id").Find(&perms).Error
	return perms, err
}

// SetUserPermissions replaces a user's permission grants with the named set
func SetUserPermissions(userID uint, names []string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&PermsPerUser{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			var perm Permission
			if err := tx.Where("name = ?", name).First(&perm).Error; err != nil {
				return err
			}
			grant := PermsPerUser{UserID: userID, PermissionID: perm.ID}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// HasPermission reports whether a user holds a named permission. Admins
// implicitly hold everything.
func HasPermission(user *User, name string) bool {
	if user.Role == RoleAdmin {
		return true
	}
	var count int64
	DB.Table("perms_per_users").
		Joins("INNER JOIN permissions ON permissions.id = perms_per_users.permission_id").
		Where("perms_per_users.user_id = ? AND permissions.name = ?", user.ID, name).
		Count(&count)
	return count > 0
}
