// netclock - network-synchronised clock appliance
//
// This is the main entry point for the clock controller. It joins the
// wireless network, keeps an MQTT session to the lab broker, synchronises
// time over SNTP and drives a serial 4-digit 7-segment display.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/netclock/migrations"

	"github.com/nerrad567/netclock/internal/api"
	"github.com/nerrad567/netclock/internal/audit"
	"github.com/nerrad567/netclock/internal/command"
	"github.com/nerrad567/netclock/internal/controller"
	"github.com/nerrad567/netclock/internal/display"
	"github.com/nerrad567/netclock/internal/infrastructure/config"
	"github.com/nerrad567/netclock/internal/infrastructure/database"
	"github.com/nerrad567/netclock/internal/infrastructure/influxdb"
	"github.com/nerrad567/netclock/internal/infrastructure/logging"
	"github.com/nerrad567/netclock/internal/infrastructure/mqtt"
	"github.com/nerrad567/netclock/internal/kvstore"
	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/radio"
	"github.com/nerrad567/netclock/internal/settings"
	"github.com/nerrad567/netclock/internal/timesync"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Startup order matters: the persistent store is seeded and read back, and
// the provisioning fields validated, before anything touches the network.
// Any failure up to that point is fatal.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting netclock",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	static, err := settings.New(cfg.Fields)
	if err != nil {
		return fmt.Errorf("building field table: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}

	store, table, err := loadPersistentState(ctx, db, static, log)
	if err != nil {
		return err
	}

	// The mirror hub doubles as a display transport.
	hub := api.NewHub(cfg.WebSocket, log.With("component", "display_ws"))
	screen, closeScreen, err := openDisplay(cfg.Display, hub, log)
	if err != nil {
		return err
	}
	defer closeScreen()
	if writeErr := screen.Write(display.NoTimeFrame()); writeErr != nil {
		log.Warn("initial display write failed", "error", writeErr)
	}

	broker, err := static.Broker()
	if err != nil {
		return fmt.Errorf("reading broker fields: %w", err)
	}
	mqttClient := mqtt.New(mqtt.Options{
		Host:             broker.Host,
		Port:             broker.Port,
		TLS:              broker.TLS,
		ClientID:         broker.DeviceID,
		Username:         broker.Username,
		Password:         broker.Password,
		KeepAlive:        broker.KeepAlive,
		QoS:              byte(cfg.MQTT.QoS), // #nosec G115 -- validated 0..2
		ReconnectInitial: time.Duration(cfg.MQTT.Reconnect.InitialDelay) * time.Second,
		ReconnectMax:     time.Duration(cfg.MQTT.Reconnect.MaxDelay) * time.Second,
		Will: &mqtt.Will{
			Topic:   link.InfoTopic,
			Payload: link.OfflinePayload(static.DevicePath()),
		},
	})
	mqttClient.SetLogger(log.With("component", "mqtt"))
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	ntpLog := log.With("component", "timesync")
	ntpClient := timesync.NewClient(time.Duration(cfg.TimeSync.QueryTimeout)*time.Second, ntpLog)
	ntpClient.SetObserver(logSyncResult(ntpLog))
	defer ntpClient.Close()

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}

	var telemetry controller.Telemetry
	if influxClient := connectTelemetry(ctx, cfg.InfluxDB, static.DevicePath(), log); influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		telemetry = influxClient
		checks["influxdb"] = influxClient
	}

	history := audit.NewRecorder(audit.NewSQLiteRepository(db.DB), 0, log.With("component", "audit"))

	pollInterval, err := static.SNTPPollInterval()
	if err != nil {
		return fmt.Errorf("reading SNTP poll interval: %w", err)
	}

	ctrl := controller.New(controller.Config{
		Link: link.Config{
			DevicePath:   static.DevicePath(),
			CommandTopic: static.CommandTopic(),
			SNTPServers:  static.SNTPServers(),
			SNTPPoll:     pollInterval,
		},
		StatusTopic:  static.StatusTopic(),
		QoS:          byte(cfg.MQTT.QoS), // #nosec G115 -- validated 0..2
		TickInterval: cfg.GetTickInterval(),
	}, controller.Deps{
		Broker:    mqttClient,
		TimeSync:  ntpClient,
		Clock:     ntpClient,
		Table:     table,
		Store:     store,
		Scanner:   radio.NewSurveyor(cfg.Radio.IWBinary, cfg.Radio.Interface),
		Display:   screen,
		Telemetry: telemetry,
		History:   history,
		Logger:    log.With("component", "controller"),
	})

	mqttClient.SetOnConnect(func() {
		ctrl.Post(controller.SessionConnected{})
	})
	mqttClient.SetOnDisconnect(func(err error) {
		ctrl.Post(controller.SessionDisconnected{Err: err})
	})
	mqttClient.SetOnPublished(func(topic string) {
		ctrl.Post(controller.Published{Topic: topic})
	})

	if cfg.Radio.Managed {
		supervisor, supErr := startSupplicant(ctx, cfg.Radio, static, log)
		if supErr != nil {
			return supErr
		}
		defer func() {
			log.Info("stopping wpa_supplicant")
			if stopErr := supervisor.Stop(); stopErr != nil {
				log.Error("error stopping wpa_supplicant", "error", stopErr)
			}
		}()
	}

	watcher := radio.NewWatcher(cfg.Radio.Interface, cfg.GetRadioPollInterval(),
		func(status link.RadioStatus, ip net.IP) bool {
			return ctrl.Post(controller.RadioStatus{Status: status, IP: ip})
		},
		log.With("component", "radio"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return history.Run(gctx) })
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.With("component", "api"),
			Status:  ctrl,
			Hub:     hub,
			History: history,
			Checks:  checks,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(gctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		g.Go(func() error {
			<-gctx.Done()
			return srv.Close()
		})
	}

	log.Info("initialisation complete",
		"device", static.DevicePath(),
		"interface", cfg.Radio.Interface,
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running: %w", err)
	}

	log.Info("netclock stopped")
	return nil
}

// loadPersistentState seeds the store, validates the provisioning fields
// and loads persisted command values. Every error here is fatal.
func loadPersistentState(ctx context.Context, db *database.DB, static *settings.Static, log *logging.Logger) (*kvstore.Store, *command.Table, error) {
	store, err := kvstore.Open(ctx, kvstore.NewSQLiteBackend(db))
	if err != nil {
		return nil, nil, fmt.Errorf("opening config store: %w", err)
	}

	seeded, err := settings.Seed(ctx, store, static)
	if err != nil {
		return nil, nil, fmt.Errorf("seeding config store: %w", err)
	}
	if len(seeded) > 0 {
		log.Info("config store seeded", "keys", seeded)
	}

	if err := static.Validate(); err != nil {
		return nil, nil, err
	}

	table := command.DefaultTable()
	if err := table.LoadPersisted(store); err != nil {
		return nil, nil, err
	}
	for _, c := range table.Snapshot() {
		if c.Persisted {
			log.Info("persisted setting", "key", c.Name, "value", c.Value)
		}
	}
	return store, table, nil
}

// openDisplay builds the frame transport: the WebSocket mirror, plus the
// UART when a port is configured.
func openDisplay(cfg config.DisplayConfig, hub *api.Hub, log *logging.Logger) (display.Transport, func(), error) {
	if cfg.Port == "" {
		log.Info("no display port configured, mirroring frames only")
		return hub, func() {}, nil
	}

	port, err := display.OpenSerial(cfg.Port, cfg.Baud)
	if err != nil {
		return nil, nil, fmt.Errorf("opening display: %w", err)
	}
	log.Info("display opened", "port", cfg.Port, "baud", cfg.Baud)

	closeFn := func() {
		if closeErr := port.Close(); closeErr != nil {
			log.Error("error closing display", "error", closeErr)
		}
	}
	return display.Tee(port, hub), closeFn, nil
}

// connectTelemetry returns nil when InfluxDB is disabled or unreachable.
// The clock keeps running without telemetry.
func connectTelemetry(ctx context.Context, cfg config.InfluxDBConfig, device string, log *logging.Logger) *influxdb.Client {
	if !cfg.Enabled {
		log.Info("InfluxDB disabled")
		return nil
	}

	client, err := influxdb.Connect(ctx, cfg, device)
	if err != nil {
		log.Warn("InfluxDB unavailable, continuing without telemetry", "url", cfg.URL, "error", err)
		return nil
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client
}

// startSupplicant writes the network block and launches wpa_supplicant.
func startSupplicant(ctx context.Context, cfg config.RadioConfig, static *settings.Static, log *logging.Logger) (*radio.Supervisor, error) {
	if err := radio.WriteNetworkConfig(cfg.SupplicantConfig, static.Get(settings.KeyWiFiSSID), static.Get(settings.KeyWiFiPass)); err != nil {
		return nil, fmt.Errorf("writing supplicant config: %w", err)
	}

	supervisor := radio.NewSupervisor(radio.SupervisorConfig{
		Binary:     cfg.SupplicantBinary,
		ConfigPath: cfg.SupplicantConfig,
		Interface:  cfg.Interface,
	}, log.With("component", "wpa_supplicant"))

	if err := supervisor.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting wpa_supplicant: %w", err)
	}
	log.Info("wpa_supplicant started", "interface", cfg.Interface)
	return supervisor, nil
}

// logSyncResult logs each SNTP poll round.
func logSyncResult(log *logging.Logger) func(timesync.Result) {
	return func(r timesync.Result) {
		if r.Err != nil {
			log.Warn("sntp poll failed", "error", r.Err)
			return
		}
		log.Debug("sntp poll", "server", r.Server, "offset", r.Offset, "rtt", r.RTT)
	}
}

// getConfigPath returns the configuration file path.
// Uses NETCLOCK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NETCLOCK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
