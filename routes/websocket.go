package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shykaruu/LauncherAdminPanel/database"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// The panel frontend connects from its own origin; stats are public reads
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsInterval is how often each connection gets a fresh snapshot
var statsInterval = 5 * time.Second

// StatsPayload is the per-server body inside a stats message
type StatsPayload struct {
	ActivePlayers    int   `json:"activePlayers"`
	CurrentBandwidth int64 `json:"currentBandwidth"`
	TotalBandwidth   int64 `json:"totalBandwidth"`
	TotalSessionTime int64 `json:"totalSessionTime"`
}

// StatsEntry pairs a server with its newest sample
type StatsEntry struct {
	ServerID   string       `json:"serverId"`
	ServerName string       `json:"serverName"`
	Stats      StatsPayload `json:"stats"`
}

// StatsMessage is the wire shape pushed to every stats subscriber
type StatsMessage struct {
	Type string       `json:"type"`
	Data []StatsEntry `json:"data"`
}

// buildSnapshot reads the newest sample for every server, substituting an
// all-zero placeholder for servers with no samples yet
func buildSnapshot() (*StatsMessage, error) {
	servers, err := database.GetServers()
	if err != nil {
		return nil, err
	}

	message := StatsMessage{Type: "stats", Data: []StatsEntry{}}
	for i := range servers {
		stat, err := database.GetLatestStat(servers[i].ServerID)
		if err != nil {
			return nil, err
		}
		message.Data = append(message.Data, StatsEntry{
			ServerID:   servers[i].ServerID,
			ServerName: servers[i].Name,
			Stats: StatsPayload{
				ActivePlayers:    stat.ActivePlayers,
				CurrentBandwidth: stat.CurrentBandwidth,
				TotalBandwidth:   stat.TotalBandwidth,
				TotalSessionTime: stat.TotalSessionTime,
			},
		})
	}
	return &message, nil
}

// sendSnapshot computes and writes one snapshot. Any failure is fatal for
// the connection.
func sendSnapshot(conn *websocket.Conn) error {
	message, err := buildSnapshot()
	if err != nil {
		return err
	}
	return conn.WriteJSON(message)
}

// WSStatsHandler upgrades the connection and streams stats snapshots:
// one immediately, then one per tick until either side closes
func WSStatsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	go statsLoop(conn)
}

// statsLoop owns one connection's ticker. The reader goroutine exists only
// to notice the peer closing; no client messages are expected.
func statsLoop(conn *websocket.Conn) {
	defer conn.Close()

	// The http.Server write deadline is still armed on the hijacked
	// connection; clear it so the ticker can outlive it
	_ = conn.UnderlyingConn().SetDeadline(time.Time{})

	done := make(chan struct{})
	go func(conn *websocket.Conn) {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}(conn)

	if err := sendSnapshot(conn); err != nil {
		return
	}

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sendSnapshot(conn); err != nil {
				return
			}
		}
	}
}
