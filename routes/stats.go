package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Shykaruu/LauncherAdminPanel/database"
	"github.com/Shykaruu/LauncherAdminPanel/utils"
)

// StatLimiter caps the public ingestion endpoint to 60 reports per minute
// across the whole process
var StatLimiter = utils.NewFixedWindowLimiter(60, time.Minute)

// statLimiterKey is the single process-wide bucket
const statLimiterKey = "stats"

// GetStats returns the most recent samples for a server, newest first.
// ?limit= overrides the default of 24.
func GetStats(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			utils.ErrorJSON(w, http.StatusBadRequest, "Limit must be a positive number")
			return
		}
		limit = parsed
	}

	stats, err := database.GetStats(serverID, limit)
	if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// ReportStat is the public ingestion endpoint game servers push samples to.
// Reports for unknown servers never create a row.
func ReportStat(w http.ResponseWriter, r *http.Request) {
	if ok, retry := StatLimiter.Allow(statLimiterKey); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
		utils.ErrorJSON(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	serverID := mux.Vars(r)["serverId"]
	if _, err := database.GetServer(serverID); err != nil {
		utils.ErrorJSON(w, http.StatusNotFound, "Server not found")
		return
	}

	body := struct {
		ActivePlayers    *int   `json:"activePlayers"`
		CurrentBandwidth *int64 `json:"currentBandwidth"`
		TotalBandwidth   *int64 `json:"totalBandwidth"`
		TotalSessionTime *int64 `json:"totalSessionTime"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		utils.ErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	stat := database.ServerStat{ServerID: serverID, Timestamp: time.Now()}
	if body.ActivePlayers != nil {
		if *body.ActivePlayers < 0 {
			utils.ErrorJSON(w, http.StatusBadRequest, "activePlayers cannot be negative")
			return
		}
		stat.ActivePlayers = *body.ActivePlayers
	}
	if body.CurrentBandwidth != nil {
		if *body.CurrentBandwidth < 0 {
			utils.ErrorJSON(w, http.StatusBadRequest, "currentBandwidth cannot be negative")
			return
		}
		stat.CurrentBandwidth = *body.CurrentBandwidth
	}
	if body.TotalBandwidth != nil {
		if *body.TotalBandwidth < 0 {
			utils.ErrorJSON(w, http.StatusBadRequest, "totalBandwidth cannot be negative")
			return
		}
		stat.TotalBandwidth = *body.TotalBandwidth
	}
	if body.TotalSessionTime != nil {
		if *body.TotalSessionTime < 0 {
			utils.ErrorJSON(w, http.StatusBadRequest, "totalSessionTime cannot be negative")
			return
		}
		stat.TotalSessionTime = *body.TotalSessionTime
	}

	if err := database.CreateStat(&stat); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &stat)
}
