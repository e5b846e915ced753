// Package main is the entry point for wampcli, a command-line client for
// exercising a WAMP router's broker and dealer roles by hand.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/wampio/gowamp-client/internal/buildinfo"
	"github.com/wampio/gowamp-client/internal/wampclient"
	"github.com/wampio/gowamp-client/internal/wampconfig"
	"github.com/wampio/gowamp-client/internal/wampmsg"
	"github.com/wampio/gowamp-client/internal/wampserialize"
	"github.com/wampio/gowamp-client/internal/wamptransport"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	logLevel := flag.String("log-level", "info", "trace, debug, info, warn, or error")
	flag.Parse()

	level, err := wampconfig.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: wampconfig.ReplaceLogLevelNames,
	}))

	if flag.NArg() == 0 {
		printUsage()
		return
	}

	switch flag.Arg(0) {
	case "connect":
		runConnect(logger, *configPath)
	case "call":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: wampcli call <procedure> [arg...]")
			os.Exit(1)
		}
		runCall(logger, *configPath, flag.Arg(1), flag.Args()[2:])
	case "subscribe":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: wampcli subscribe <topic>")
			os.Exit(1)
		}
		runSubscribe(logger, *configPath, flag.Arg(1))
	case "publish":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: wampcli publish <topic> [arg...]")
			os.Exit(1)
		}
		runPublish(logger, *configPath, flag.Arg(1), flag.Args()[2:])
	case "register":
		if flag.NArg() < 3 {
			fmt.Fprintln(os.Stderr, "usage: wampcli register <procedure> <shell-command>")
			os.Exit(1)
		}
		runRegister(logger, *configPath, flag.Arg(1), flag.Arg(2))
	case "version":
		fmt.Println(buildinfo.String())
		for k, v := range buildinfo.Info() {
			fmt.Printf("  %-12s %s\n", k+":", v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("wampcli - WAMP basic profile client")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  connect                       Open a realm and print WELCOME details")
	fmt.Println("  call <proc> [arg...]          Invoke a remote procedure")
	fmt.Println("  subscribe <topic>             Print events until interrupted")
	fmt.Println("  publish <topic> [arg...]      Publish one event")
	fmt.Println("  register <proc> <shell-cmd>   Serve a procedure by running a shell command")
	fmt.Println("  version                       Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// loadConfig resolves the config file (explicit flag, then the search
// path order in wampconfig.DefaultSearchPaths) and falls back to
// wampconfig.Default() if nothing is found, so a bare `wampcli connect`
// works against a router on localhost out of the box.
func loadConfig(logger *slog.Logger, explicit string) *wampconfig.Config {
	path, err := wampconfig.FindConfig(explicit)
	if err != nil {
		logger.Debug("no config file found, using defaults", "error", err)
		return wampconfig.Default()
	}
	cfg, err := wampconfig.Load(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	return cfg
}

// cliDelegate adapts wampclient.Delegate's two lifecycle callbacks into
// plain funcs so each subcommand can wait on a channel instead of
// implementing the interface itself.
type cliDelegate struct {
	onConnected func(wampmsg.ID)
	onEnded     func(string)
}

func (d *cliDelegate) Connected(sessionID wampmsg.ID) {
	if d.onConnected != nil {
		d.onConnected(sessionID)
	}
}

func (d *cliDelegate) SessionEnded(reason string) {
	if d.onEnded != nil {
		d.onEnded(reason)
	}
}

func buildSerializer(name string) wampserialize.Serializer {
	if name == "msgpack" {
		return wampserialize.NewMsgPackSerializer()
	}
	return wampserialize.NewJSONSerializer()
}

// dial opens and waits for an established session, or exits the process
// on failure. The returned function tears the session down.
func dial(logger *slog.Logger, cfg *wampconfig.Config) (*wampclient.Session, func()) {
	ser := buildSerializer(cfg.Serializer)
	transport := wamptransport.NewWebSocketTransport(cfg.RouterURL, ser, logger)

	connected := make(chan wampmsg.ID, 1)
	ended := make(chan string, 1)

	sess := wampclient.NewSession(transport, wampclient.Config{
		Realm:         cfg.Realm,
		Agent:         cfg.Agent,
		Roles:         wampclient.Roles{Callee: cfg.Roles.Callee},
		AuthMethods:   cfg.Auth.AuthMethods,
		AuthID:        cfg.Auth.AuthID,
		AuthRole:      cfg.Auth.AuthRole,
		AutoReconnect: cfg.Reconnect.Enabled,
		Logger:        logger,
		Delegate: &cliDelegate{
			onConnected: func(id wampmsg.ID) { connected <- id },
			onEnded:     func(reason string) { ended <- reason },
		},
	})

	if err := sess.Connect(); err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}

	select {
	case id := <-connected:
		logger.Info("session established", "session_id", id, "realm", cfg.Realm)
	case reason := <-ended:
		logger.Error("session ended before establishment", "reason", reason)
		os.Exit(1)
	case <-time.After(15 * time.Second):
		logger.Error("timed out waiting for WELCOME")
		os.Exit(1)
	}

	return sess, func() { sess.Disconnect("") }
}

func runConnect(logger *slog.Logger, configPath string) {
	cfg := loadConfig(logger, configPath)
	sess, teardown := dial(logger, cfg)
	defer teardown()

	fmt.Printf("session_id: %d\n", sess.SessionID())
	fmt.Printf("router_roles: %v\n", sess.RouterRoles())

	if dataDir, err := os.UserConfigDir(); err == nil {
		if instanceID, err := wampconfig.LoadOrCreateInstanceID(dataDir + "/wampclient"); err == nil {
			fmt.Printf("instance_id: %s\n", instanceID)
		} else {
			logger.Debug("instance id unavailable", "error", err)
		}
	}
}

func runCall(logger *slog.Logger, configPath, procedure string, rawArgs []string) {
	cfg := loadConfig(logger, configPath)
	sess, teardown := dial(logger, cfg)
	defer teardown()

	correlation := uuid.NewString()
	logger.Debug("call issued", "correlation_id", correlation, "procedure", procedure)

	done := make(chan struct{})
	lane := wampclient.NewGoroutineLane(1, logger)
	defer lane.Close()

	sess.Call(wampmsg.URI(procedure), wampmsg.Dict{}, wampmsg.List(parseArgs(rawArgs)), nil, lane,
		func(details wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict) {
			printJSON(map[string]any{"args": args, "kwargs": kwargs})
			close(done)
		},
		func(details wampmsg.Dict, errURI wampmsg.URI, args wampmsg.List, kwargs wampmsg.Dict) {
			fmt.Fprintf(os.Stderr, "error: %s %v\n", errURI, args)
			close(done)
			os.Exit(1)
		})

	<-done
}

func runSubscribe(logger *slog.Logger, configPath, topic string) {
	cfg := loadConfig(logger, configPath)
	sess, teardown := dial(logger, cfg)
	defer teardown()

	subscribed := make(chan struct{})
	lane := wampclient.NewGoroutineLane(16, logger)
	defer lane.Close()

	sess.Subscribe(wampmsg.URI(topic), wampmsg.Dict{}, lane,
		func(sub *wampclient.Subscription) {
			logger.Info("subscribed", "topic", topic, "subscription_id", sub.ID())
			close(subscribed)
		},
		func(details wampmsg.Dict, errURI wampmsg.URI) {
			logger.Error("subscribe failed", "error_uri", errURI)
			os.Exit(1)
		},
		func(details wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict) {
			printJSON(map[string]any{"args": args, "kwargs": kwargs})
		})

	<-subscribed
	waitForInterrupt()
}

func runPublish(logger *slog.Logger, configPath, topic string, rawArgs []string) {
	cfg := loadConfig(logger, configPath)
	sess, teardown := dial(logger, cfg)
	defer teardown()

	done := make(chan struct{})
	lane := wampclient.NewGoroutineLane(1, logger)
	defer lane.Close()

	sess.Publish(wampmsg.URI(topic), wampmsg.Dict{}, wampmsg.List(parseArgs(rawArgs)), nil, lane,
		func(pubID wampmsg.ID) {
			fmt.Printf("publication_id: %d\n", pubID)
			close(done)
		},
		func(details wampmsg.Dict, errURI wampmsg.URI) {
			fmt.Fprintf(os.Stderr, "error: %s\n", errURI)
			close(done)
			os.Exit(1)
		})

	<-done
}

func runRegister(logger *slog.Logger, configPath, procedure, shellCmd string) {
	cfg := loadConfig(logger, configPath)
	cfg.Roles.Callee = true
	sess, teardown := dial(logger, cfg)
	defer teardown()

	callee := newShellCallee(shellCmd)
	registered := make(chan struct{})
	lane := wampclient.NewGoroutineLane(16, logger)
	defer lane.Close()

	sess.Register(wampmsg.URI(procedure), wampmsg.Dict{}, lane,
		func(reg *wampclient.Registration) {
			logger.Info("registered", "procedure", procedure, "registration_id", reg.ID())
			close(registered)
		},
		func(details wampmsg.Dict, errURI wampmsg.URI) {
			logger.Error("register failed", "error_uri", errURI)
			os.Exit(1)
		},
		func(ctx context.Context, args wampmsg.List, kwargs wampmsg.Dict) (any, error) {
			logger.Info("invocation received", "procedure", procedure)
			return callee.invoke(ctx, args, kwargs)
		})

	<-registered
	waitForInterrupt()
}

func waitForInterrupt() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
