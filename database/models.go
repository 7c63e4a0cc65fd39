package database

import (
	"time"
)

// Roles a user account can hold
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Loader types a server can run
const (
	LoaderFabric = "Fabric"
	LoaderForge  = "Forge"
)

// User Model
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"type:varchar(32) not null; uniqueIndex" json:"username"`
	Email           string         `gorm:"type:varchar(128) not null; uniqueIndex" json:"email"`
	Password        []byte         `gorm:"not null" json:"-"`
	Role            string         `gorm:"type:varchar(16) not null; default:'user'" json:"role"`
	Token           string         `gorm:"type:varchar(64); index" json:"-"`
	TokenExpiration time.Time      `json:"-"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Permissions     []PermsPerUser `gorm:"constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// Permission Model
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(64) not null; uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// PermsPerUser Model. Foreign Key table
type PermsPerUser struct {
	UserID       uint       `gorm:"not null; index:perms_per_user,unique" json:"userId"`
	PermissionID uint       `gorm:"not null; index:perms_per_user,unique" json:"permissionId"`
	Permission   Permission `gorm:"constraint:OnDelete:CASCADE" json:"permission"`
}

// Server Model. ServerID is the stable external key; mods, files and stats
// all reference it rather than the numeric primary key.
type Server struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ServerID         string       `gorm:"type:varchar(64) not null; uniqueIndex" json:"serverId"`
	Name             string       `gorm:"type:varchar(64) not null" json:"name"`
	Description      string       `gorm:"type:text" json:"description"`
	Icon             string       `gorm:"type:text" json:"icon"`
	Version          string       `gorm:"type:varchar(32)" json:"version"`
	Address          string       `gorm:"type:varchar(128)" json:"address"`
	MinecraftVersion string       `gorm:"type:varchar(32)" json:"minecraftVersion"`
	LoaderType       string       `gorm:"type:varchar(16) not null; default:'Fabric'" json:"loaderType"`
	LoaderVersion    string       `gorm:"type:varchar(32)" json:"loaderVersion"`
	MainServer       bool         `gorm:"not null; default:false" json:"mainServer"`
	Autoconnect      bool         `gorm:"not null; default:false" json:"autoconnect"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	Mods             []Mod        `gorm:"foreignKey:ServerID;references:ServerID;constraint:OnDelete:CASCADE" json:"-"`
	Files            []File       `gorm:"foreignKey:ServerID;references:ServerID;constraint:OnDelete:CASCADE" json:"-"`
	Stats            []ServerStat `gorm:"foreignKey:ServerID;references:ServerID;constraint:OnDelete:CASCADE" json:"-"`
}

// Mod Model. ModID is the launcher-facing identifier and is only unique
// within a server, not globally.
type Mod struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ServerID        string    `gorm:"type:varchar(64) not null; index" json:"serverId"`
	ModID           string    `gorm:"type:varchar(128) not null" json:"modId"`
	Name            string    `gorm:"type:varchar(128) not null" json:"name"`
	Type            string    `gorm:"type:varchar(32) not null; default:'Mod'" json:"type"`
	Version         string    `gorm:"type:varchar(64)" json:"version"`
	// No column defaults here: gorm would skip a false value on insert and
	// let the default win, so the handlers fill these in instead
	Required        bool      `gorm:"not null" json:"required"`
	Enabled         bool      `gorm:"not null" json:"enabled"`
	OptionalDefault bool      `gorm:"not null; default:false" json:"optionalDefault"`
	Size            int64     `gorm:"not null; default:0" json:"size"`
	URL             string    `gorm:"type:text" json:"url"`
	MD5             string    `gorm:"type:varchar(32)" json:"md5"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// File Model. Rows form a virtual filesystem per server: slash separated
// paths, directory rows as the nodes, ancestry derived by prefix matching.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ServerID     string    `gorm:"type:varchar(64) not null; index:file_path,unique" json:"serverId"`
	Path         string    `gorm:"type:varchar(512) not null; index:file_path,unique" json:"path"`
	IsDirectory  bool      `gorm:"not null; default:false" json:"isDirectory"`
	IsSticky     bool      `gorm:"not null; default:false" json:"isSticky"`
	Size         int64     `gorm:"not null; default:0" json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// ServerStat Model. An immutable time series sample, inserted and queried
// by recency, never updated.
type ServerStat struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ServerID         string    `gorm:"type:varchar(64) not null; index" json:"serverId"`
	ActivePlayers    int       `gorm:"not null; default:0" json:"activePlayers"`
	CurrentBandwidth int64     `gorm:"not null; default:0" json:"currentBandwidth"`
	TotalBandwidth   int64     `gorm:"not null; default:0" json:"totalBandwidth"`
	TotalSessionTime int64     `gorm:"not null; default:0" json:"totalSessionTime"`
	Timestamp        time.Time `gorm:"index" json:"timestamp"`
}

// InstallerSettings Model. Singleton row keyed to ID 1
type InstallerSettings struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	Installed   bool       `gorm:"not null; default:false" json:"installed"`
	InstalledAt *time.Time `json:"installedAt,omitempty"`
}

// ApiConfig Model. Singleton row keyed to ID 1, feeds the distribution
// manifest's discord and rss fields
type ApiConfig struct {
	ID                    uint   `gorm:"primaryKey" json:"-"`
	DiscordClientID       string `gorm:"type:varchar(64)" json:"discordClientId"`
	DiscordSmallImageText string `gorm:"type:varchar(128)" json:"discordSmallImageText"`
	DiscordSmallImageID   string `gorm:"type:varchar(64)" json:"discordSmallImageId"`
	RSSURL                string `gorm:"type:text" json:"rssUrl"`
}

// SiteSettings Model. Singleton row keyed to ID 1
type SiteSettings struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Name        string `gorm:"type:varchar(128)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Logo        string `gorm:"type:text" json:"logo"`
	Theme       string `gorm:"type:varchar(32)" json:"theme"`
}
