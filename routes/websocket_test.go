package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shykaruu/LauncherAdminPanel/database"
)

// dialStats connects a websocket client to a test stats endpoint
func dialStats(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(WSStatsHandler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readStats(t *testing.T, conn *websocket.Conn) StatsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var message StatsMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestWSStatsImmediateSnapshot(t *testing.T) {
	openTestDB(t)
	seedServer(t, "main", database.LoaderFabric)
	require.NoError(t, database.CreateStat(&database.ServerStat{
		ServerID:         "main",
		ActivePlayers:    12,
		CurrentBandwidth: 2048,
		TotalBandwidth:   10240,
		TotalSessionTime: 3600,
	}))

	conn := dialStats(t)
	message := readStats(t, conn)

	assert.Equal(t, "stats", message.Type)
	require.Len(t, message.Data, 1)
	assert.Equal(t, "main", message.Data[0].ServerID)
	assert.Equal(t, "Server main", message.Data[0].ServerName)
	assert.Equal(t, 12, message.Data[0].Stats.ActivePlayers)
	assert.Equal(t, int64(2048), message.Data[0].Stats.CurrentBandwidth)
	assert.Equal(t, int64(10240), message.Data[0].Stats.TotalBandwidth)
	assert.Equal(t, int64(3600), message.Data[0].Stats.TotalSessionTime)
}

func TestWSStatsPlaceholderForQuietServer(t *testing.T) {
	openTestDB(t)
	seedServer(t, "quiet", database.LoaderForge)

	conn := dialStats(t)
	message := readStats(t, conn)

	require.Len(t, message.Data, 1)
	assert.Equal(t, "quiet", message.Data[0].ServerID)
	assert.Zero(t, message.Data[0].Stats.ActivePlayers)
	assert.Zero(t, message.Data[0].Stats.CurrentBandwidth)
	assert.Zero(t, message.Data[0].Stats.TotalBandwidth)
	assert.Zero(t, message.Data[0].Stats.TotalSessionTime)
}

func TestWSStatsPeriodicSnapshots(t *testing.T) {
	openTestDB(t)
	seedServer(t, "main", database.LoaderFabric)

	// Shrink the tick so the test doesn't sit through real 5s intervals
	old := statsInterval
	statsInterval = 50 * time.Millisecond
	defer func() { statsInterval = old }()

	conn := dialStats(t)

	first := readStats(t, conn)
	second := readStats(t, conn)
	assert.Equal(t, "stats", first.Type)
	assert.Equal(t, "stats", second.Type)

	// New samples show up on later ticks, read fresh per snapshot
	require.NoError(t, database.CreateStat(&database.ServerStat{
		ServerID: "main", ActivePlayers: 5,
	}))
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "never saw the new sample")
		message := readStats(t, conn)
		if len(message.Data) == 1 && message.Data[0].Stats.ActivePlayers == 5 {
			break
		}
	}
}
