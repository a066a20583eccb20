package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"driftgate/server/internal/biome"
	"driftgate/server/internal/progress"
	"driftgate/server/internal/snapshot"
	"driftgate/server/logging"
	"driftgate/server/logging/sinks"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "listen address")
		seed         = flag.String("seed", defaultWorldSeed, "world seed")
		biomePath    = flag.String("biomes", "config/biomes.yaml", "biome catalog path")
		progressPath = flag.String("progress-db", "data/progress.db", "progress database path")
		snapshotDir  = flag.String("snapshot-dir", "data/snapshots", "universe snapshot directory")
		logJSONPath  = flag.String("log-json", "", "NDJSON event log path (empty disables)")
		disableNPCs  = flag.Bool("no-npcs", false, "disable NPC spawning")
	)
	flag.Parse()

	cfg := defaultWorldConfig()
	cfg.Seed = *seed
	cfg.BiomeCatalogPath = *biomePath
	cfg.ProgressDBPath = *progressPath
	cfg.SnapshotDir = *snapshotDir
	cfg.NPCs = !*disableNPCs
	cfg = cfg.normalized()

	logCfg := logging.DefaultConfig()
	namedSinks, err := buildSinks(*logJSONPath)
	if err != nil {
		log.Fatalf("failed to open log sinks: %v", err)
	}
	router, err := logging.NewRouter(nil, logCfg, namedSinks)
	if err != nil {
		log.Fatalf("failed to start logging router: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	catalog, err := biome.Load(cfg.BiomeCatalogPath)
	if err != nil {
		log.Fatalf("failed to load biome catalog %s: %v", cfg.BiomeCatalogPath, err)
	}

	store, err := progress.Open(cfg.ProgressDBPath)
	if err != nil {
		log.Fatalf("failed to open progress store %s: %v", cfg.ProgressDBPath, err)
	}
	defer store.Close()

	writer, err := snapshot.NewWriter(cfg.SnapshotDir, cfg.SnapshotRetention)
	if err != nil {
		log.Fatalf("failed to open snapshot writer %s: %v", cfg.SnapshotDir, err)
	}

	world := newWorld(cfg, worldDeps{
		Publisher: router,
		Catalog:   catalog,
		Progress:  store,
		Snapshots: writer,
	})
	hub := newHub(world)

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			TickRate   int                 `json:"tickRate"`
			Objects    int                 `json:"objects"`
			Telemetry  telemetrySnapshot   `json:"telemetry"`
			Logging    logging.RouterStats `json:"logging"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   tickRate,
			Objects:    world.ObjectCount(),
			Telemetry:  world.telemetry.Snapshot(),
			Logging:    router.Stats(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	http.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", playerID, err)
			return
		}

		sub := hub.Subscribe(playerID, conn)
		if err := hub.writeTo(sub, hub.world.Snapshot()); err != nil {
			hub.Disconnect(playerID, "initial_write_failed")
			return
		}

		readLoop(hub, sub, playerID, conn)
	})

	log.Printf("server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// readLoop pumps client messages into the command queue until the connection
// drops.
func readLoop(hub *Hub, sub *subscriber, playerID string, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(playerID, "read_failed")
			return
		}

		var msg clientEnvelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "input":
			hub.QueueCommand(Command{
				PlayerID: playerID,
				Kind:     CommandMove,
				DX:       msg.DX,
				DZ:       msg.DZ,
				Jump:     msg.Jump,
			})
		case "heartbeat":
			now := time.Now()
			var rtt time.Duration
			if msg.SentAt > 0 {
				clientTime := time.UnixMilli(msg.SentAt)
				if clientTime.Before(now.Add(5 * time.Second)) {
					rtt = now.Sub(clientTime)
					if rtt < 0 {
						rtt = 0
					}
				}
			}
			hub.QueueCommand(Command{PlayerID: playerID, Kind: CommandHeartbeat, RTT: rtt})

			ack := heartbeatMessage{Type: "heartbeat", SentAt: msg.SentAt, ServerAt: now.UnixMilli()}
			if err := hub.writeTo(sub, ack); err != nil {
				hub.Disconnect(playerID, "heartbeat_write_failed")
				return
			}
		default:
			log.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}

// buildSinks assembles the console sink plus an optional NDJSON file sink.
func buildSinks(jsonPath string) ([]logging.NamedSink, error) {
	out := []logging.NamedSink{{Name: "console", Sink: sinks.NewConsole(os.Stdout)}}
	if jsonPath != "" {
		f, err := os.OpenFile(jsonPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = append(out, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(f, time.Second)})
	}
	return out, nil
}
