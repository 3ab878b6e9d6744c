package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"callward/bridge"
	"callward/config"
	"callward/event"
	"callward/filter"
	"callward/mailbox"
	"callward/metrics"
	"callward/notify"
	"callward/relay"
	"callward/remote"
	"callward/store"
)

var version = "dev"

// Decision is the per-event verdict written back to the device bridge.
type Decision struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// app bundles everything one configuration generation wires together.
type app struct {
	rules     *store.Rules
	relay     *relay.Relay
	processor *mailbox.Processor
	poll      time.Duration
}

var (
	currentApp *app
	appMutex   sync.RWMutex
)

// buildApp wires one configuration generation around the shared store. The
// store is opened once at startup and survives reloads: badger holds a
// directory lock, so a database path change requires a restart.
func buildApp(cfg *config.Config, db store.Store) *app {
	rules := store.NewRules(db, cfg.Filter.Triggers)
	mail := bridge.NewMailClient(cfg.Bridge.MailPath)

	a := &app{rules: rules}
	if cfg.Relay.Recipient != "" {
		a.relay = relay.NewRelay(mail, cfg.Relay.Recipient, cfg.Device.Name, cfg.Relay.RatePerMinute, cfg.Relay.Burst)
	} else {
		slog.Warn("relay.recipient is not set; accepted events will not be relayed")
	}

	if cfg.Remote.Enabled {
		notifier := notify.NewGatedNotifier(bridge.NewNotifySink(cfg.Bridge.NotifyPath), cfg.Remote.NotifyUser)
		executor := &remote.Executor{
			Store:    db,
			Notifier: notifier,
			OnChange: rules.Invalidate,
		}
		if cfg.Remote.AllowSMSSend {
			executor.SMS = bridge.NewSMSClient(cfg.Bridge.SMSPath)
		}
		a.processor = mailbox.NewProcessor(mail, executor, cfg.Device.Name, cfg.Remote.AllowedSenders)
		a.poll = cfg.Remote.PollInterval
	}

	return a
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "./config.toml", "Path to the configuration file.")
	useDefaults := flag.Bool("use-defaults", false, "Run with internal defaults if the config file is missing.")
	validateConfig := flag.Bool("validate", false, "Validate the configuration file and exit.")
	dryRun := flag.Bool("dry-run", false, "Log decisions without relaying anything.")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *validateConfig {
		if err := validateConfiguration(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is INVALID: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is VALID.")
		return
	}
	if err := runApp(*configPath, *useDefaults, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Application run failed: %v\n", err)
		os.Exit(1)
	}
}

func runApp(configPath string, useDefaults bool, dryRun bool) error {
	cfg, defaultsUsed, err := config.Load(configPath, useDefaults)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.Level.ToSlogLevel()}))
	slog.SetDefault(logger)
	if dryRun {
		slog.Warn("Running in DRY-RUN mode.")
	}
	slog.Info("callward starting up", "version", version, "device", cfg.Device.Name,
		"config_path", configPath, "using_defaults", defaultsUsed)

	db, err := store.NewBadgerStore(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	a := buildApp(cfg, db)
	appMutex.Lock()
	currentApp = a
	appMutex.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	onReload := func(newCfg *config.Config) {
		slog.Info("Reloading with new configuration...")
		if newCfg.DB.Path != cfg.DB.Path {
			slog.Warn("database.path changed; a restart is required for the new path to take effect")
		}
		newApp := buildApp(newCfg, db)
		appMutex.Lock()
		currentApp = newApp
		appMutex.Unlock()
		slog.Info("Configuration reloaded successfully.")
	}
	go config.StartWatcher(ctx, configPath, onReload, 0)

	if cfg.Metrics.Listen != "" {
		go metrics.Serve(cfg.Metrics.Listen)
	}
	go pollMailbox(ctx)

	return processEvents(ctx, os.Stdin, os.Stdout, dryRun)
}

// mailboxIdleRecheck is how often the poller re-checks the configuration
// while remote control is disabled.
const mailboxIdleRecheck = time.Minute

// pollSnapshot reads the mailbox processor and poll interval from the
// current configuration generation. With remote control disabled it
// returns a nil processor and the idle recheck interval.
func pollSnapshot() (*mailbox.Processor, time.Duration) {
	appMutex.RLock()
	defer appMutex.RUnlock()
	a := currentApp
	if a.processor == nil || a.poll <= 0 {
		return nil, mailboxIdleRecheck
	}
	return a.processor, a.poll
}

// pollMailbox runs the control mailbox processor. The processor and the
// interval are re-read every tick, so a reload that enables remote control
// or changes remote.poll_interval takes effect without a restart.
func pollMailbox(ctx context.Context) {
	_, interval := pollSnapshot()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processor, next := pollSnapshot()
			if next != interval {
				interval = next
				ticker.Reset(interval)
			}
			if processor == nil {
				continue
			}
			if err := processor.Poll(ctx); err != nil {
				slog.Error("Control mailbox poll failed", "error", err)
				metrics.MailboxPolls.WithLabelValues("error").Inc()
				continue
			}
			metrics.MailboxPolls.WithLabelValues("ok").Inc()
		}
	}
}

func processEvents(ctx context.Context, r io.Reader, w io.Writer, dryRun bool) error {
	linesChan := make(chan []byte)
	errChan := make(chan error, 1)
	encoder := json.NewEncoder(w)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lineCopy := make([]byte, len(scanner.Bytes()))
			copy(lineCopy, scanner.Bytes())
			linesChan <- lineCopy
		}
		if err := scanner.Err(); err != nil {
			errChan <- err
		}
		close(linesChan)
	}()

	slog.Info("Ready to process events from stdin...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-linesChan:
			if !ok {
				select {
				case err := <-errChan:
					return err
				default:
				}
				slog.Info("Input stream closed, shutting down.")
				return nil
			}

			if len(line) == 0 {
				continue
			}
			payload, err := event.DecodePayload(line)
			if err != nil {
				slog.Warn("Failed to decode event JSON", "error", err, "raw_line_prefix", string(line))
				continue
			}

			appMutex.RLock()
			a := currentApp
			appMutex.RUnlock()

			decision := a.handlePayload(ctx, payload, dryRun)
			if err := encoder.Encode(decision); err != nil {
				if errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
					return nil
				}
				slog.Error("Failed to write decision to stdout", "error", err)
			}
		}
	}
}

// handlePayload routes one decoded payload to its handler. Phone events go
// through the filter; battery reports bypass filtering and relay directly.
func (a *app) handlePayload(ctx context.Context, payload event.Payload, dryRun bool) Decision {
	switch p := payload.(type) {
	case *event.PhoneEvent:
		return a.handleEvent(ctx, p, dryRun)
	case *event.BatteryInfo:
		return a.handleBattery(ctx, p, dryRun)
	default:
		slog.Warn("No handler for payload kind", "kind", payload.Kind())
		return Decision{Action: "ignore", Reason: "internal: no handler for payload kind"}
	}
}

func (a *app) handleBattery(ctx context.Context, b *event.BatteryInfo, dryRun bool) Decision {
	if dryRun {
		slog.Info("Dry-run: battery report would be relayed", "level", b.Level)
		return Decision{ID: b.ID, Action: "relay"}
	}
	if a.relay == nil {
		slog.Debug("No relay recipient configured, battery report not relayed", "level", b.Level)
		return Decision{ID: b.ID, Action: "relay"}
	}
	if err := a.relay.DispatchBattery(ctx, b); err != nil {
		slog.Error("Failed to relay battery report", "error", err)
		metrics.RelayFailures.Inc()
		return Decision{ID: b.ID, Action: "ignore", Reason: "internal: relay failed"}
	}
	return Decision{ID: b.ID, Action: "relay"}
}

// handleEvent classifies one event and relays it when accepted.
func (a *app) handleEvent(ctx context.Context, ev *event.PhoneEvent, dryRun bool) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in event handling",
				"panic", r, "phone", ev.Phone, "stack", string(debug.Stack()))
			decision = Decision{ID: ev.ID, Action: "ignore", Reason: "internal: an unexpected error occurred"}
		}
	}()

	rules, err := a.rules.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load rules", "error", err)
		return Decision{ID: ev.ID, Action: "ignore", Reason: "internal: rules unavailable"}
	}

	result := filter.Test(ev, rules)
	metrics.EventsTotal.WithLabelValues(ev.Trigger().String(), result.String()).Inc()
	if !result.Accepted() {
		for _, reason := range []filter.Classification{
			filter.BypassTriggerOff, filter.BypassNumberBlacklisted, filter.BypassTextBlacklisted,
		} {
			if result.Has(reason) {
				metrics.BypassTotal.WithLabelValues(reason.String()).Inc()
			}
		}
		return Decision{ID: ev.ID, Action: "ignore", Reason: result.String()}
	}

	if dryRun {
		slog.Info("Dry-run: event would be relayed", "phone", ev.Phone, "trigger", ev.Trigger())
		return Decision{ID: ev.ID, Action: "relay"}
	}
	if a.relay == nil {
		slog.Debug("No relay recipient configured, accepted event not relayed", "phone", ev.Phone)
		return Decision{ID: ev.ID, Action: "relay"}
	}

	if err := a.relay.Dispatch(ctx, ev); err != nil {
		slog.Error("Failed to relay accepted event", "error", err)
		metrics.RelayFailures.Inc()
		return Decision{ID: ev.ID, Action: "ignore", Reason: "internal: relay failed"}
	}
	return Decision{ID: ev.ID, Action: "relay"}
}

func validateConfiguration(configPath string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	fmt.Printf("Validating configuration file: %s\n", configPath)
	cfg, _, err := config.Load(configPath, false)
	if err != nil {
		return err
	}
	db, err := store.NewBadgerStore(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	buildApp(cfg, db)
	return db.Close()
}
