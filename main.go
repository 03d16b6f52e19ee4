package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeberg.org/miketth/wlkbd/pkg/keyboard"
	jsonstore "codeberg.org/miketth/wlkbd/pkg/keystore/json"
	"codeberg.org/miketth/wlkbd/pkg/keystore/memory"
	"codeberg.org/miketth/wlkbd/pkg/keystore/sqlite"
	"codeberg.org/miketth/wlkbd/pkg/wayland"
	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
	"codeberg.org/miketth/wlkbd/pkg/xkb"
	"codeberg.org/miketth/wlkbd/pkg/xkblayouts"
)

type cli struct {
	Debug  bool            `help:"Enable debug logging."`
	Config kong.ConfigFlag `help:"Path to a YAML config file." placeholder:"PATH"`
	Store  storeFlags      `embed:""`

	Monitor monitorCmd `cmd:"" default:"1" help:"Track keyboards and record key presses (default)."`
	Stats   statsCmd   `cmd:"" help:"Print recorded key press counts."`
}

type storeFlags struct {
	Store     string `enum:"sqlite,json,memory" default:"sqlite" help:"Where key presses are recorded (${enum})."`
	StorePath string `type:"path" help:"Store file, defaults to a file in the XDG data directory."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("wlkbd"),
		kong.Description("Wayland keyboard monitor"),
		kong.UsageOnError(),
		kong.Vars{"evdev_xml": xkblayouts.DefaultPath},
		kong.Configuration(kongyaml.Loader, filepath.Join(xdg.ConfigHome, "wlkbd", "config.yaml")),
	)

	log, err := newLogger(c.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx.Bind(log, &c.Store)
	if err := ctx.Run(); err != nil {
		log.Errorw("wlkbd failed", "error", err)
		os.Exit(1)
	}
}

type monitorCmd struct {
	Display        string `help:"Wayland display to connect to, defaults to the WAYLAND_DISPLAY environment variable."`
	EvdevXMLPath   string `name:"evdev-xml-path" type:"path" default:"${evdev_xml}" help:"Path to evdev.xml, used to name layouts."`
	SystemIncludes bool   `default:"true" negatable:"" help:"Let keymaps include files from the system xkb directories."`
}

func (m *monitorCmd) Run(log *zap.SugaredLogger, sf *storeFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var layouts wlkbd.LayoutResolver
	registry, err := xkblayouts.ParseRegistry(m.EvdevXMLPath)
	if err != nil {
		log.Warnw("layout names will not be resolved", "path", m.EvdevXMLPath, "error", err)
	} else {
		layouts = registry
	}

	store, err := openStore(sf, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	recorder := wlkbd.NewRecorder(store, layouts, log)
	keyboards := keyboard.NewCollection(xkb.Backend{NoDefaultIncludes: !m.SystemIncludes}, recorder.HandleKey, log)

	client, err := wayland.Connect(m.Display, keyboards, log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnw("close wayland client", "error", err)
		}
	}()

	log.Infow("started wlkbd", "keyboards", keyboards.Len(), "store", sf.Store)

	errChan := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		errChan <- client.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	if saver, ok := store.PressStore.(*jsonstore.PressStore); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := saver.SaveLooper(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("save presses: %w", err)
			}
		}()
	}

	err = <-errChan
	stop()
	wg.Wait()

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		return nil
	case err != nil:
		return err
	}

	return nil
}

type statsCmd struct {
	Device string `arg:"" optional:"" help:"Only show this device."`
	Top    int    `default:"20" help:"Number of keys to show per device, 0 for all."`
}

func (s *statsCmd) Run(log *zap.SugaredLogger, sf *storeFlags) error {
	if sf.Store == "memory" {
		return errors.New("the memory store does not keep presses between runs")
	}

	store, err := openStore(sf, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	devices := []string{s.Device}
	if s.Device == "" {
		devices, err = store.GetDevices()
		if err != nil {
			return fmt.Errorf("get devices: %w", err)
		}
	}

	for _, device := range devices {
		presses, err := store.GetPresses(device)
		if err != nil {
			return fmt.Errorf("get presses for %q: %w", device, err)
		}
		printPresses(os.Stdout, device, presses, s.Top)
	}

	return nil
}

type openedStore struct {
	wlkbd.PressStore
	io.Closer
}

func openStore(sf *storeFlags, log *zap.SugaredLogger) (openedStore, error) {
	switch sf.Store {
	case "memory":
		return openedStore{PressStore: memory.NewPressStore(), Closer: nopCloser{}}, nil

	case "json":
		path, err := storePath(sf.StorePath, "presses.json")
		if err != nil {
			return openedStore{}, err
		}
		store, err := jsonstore.NewPressStore(path)
		if err != nil {
			return openedStore{}, fmt.Errorf("create json store: %w", err)
		}
		return openedStore{PressStore: store, Closer: savingCloser{store}}, nil

	case "sqlite":
		path, err := storePath(sf.StorePath, "presses.db")
		if err != nil {
			return openedStore{}, err
		}
		store, err := sqlite.NewPressStore(path, log)
		if err != nil {
			return openedStore{}, fmt.Errorf("create sqlite store: %w", err)
		}
		return openedStore{PressStore: store, Closer: store}, nil
	}

	return openedStore{}, fmt.Errorf("unknown store %q", sf.Store)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// savingCloser flushes the json store before closing it. The file is already
// closed when SaveLooper ran, in which case the errors are ignored.
type savingCloser struct {
	store *jsonstore.PressStore
}

func (c savingCloser) Close() error {
	_ = c.store.Save()
	_ = c.store.Close()
	return nil
}

func storePath(configured, name string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	path, err := xdg.DataFile(filepath.Join("wlkbd", name))
	if err != nil {
		return "", fmt.Errorf("get data file path: %w", err)
	}
	return path, nil
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Watching keyboards")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
