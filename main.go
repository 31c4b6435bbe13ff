package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/hub"
	"github.com/behold-mycode/komari/player"
	"github.com/behold-mycode/komari/profile"
	"github.com/behold-mycode/komari/rng"
	"github.com/behold-mycode/komari/settings"
	"github.com/behold-mycode/komari/worker"
)

func main() {
	settingsPath := flag.String("settings", "settings.toml", "path to the settings file")
	profilePath := flag.String("profile", "profile.yaml", "path to the character profile")
	flag.Parse()

	conf := readSettings(*settingsPath)

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	if conf.Observability.Debug {
		log.Level = logrus.DebugLevel
	}
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.Level)

	if conf.Observability.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: conf.Observability.SentryDSN}); err != nil {
			log.WithError(err).Warn("sentry init failed, continuing without crash reporting")
		}
	}
	if conf.Observability.StatsViewAddr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithAddr(conf.Observability.StatsViewAddr))
		mgr := statsview.New()
		go mgr.Start()
	}

	prof, err := profile.Load(*profilePath)
	if err != nil {
		log.WithError(err).Fatal("unable to load profile")
	}
	cfg, err := prof.Config()
	if err != nil {
		log.WithError(err).Fatal("unable to resolve profile keys")
	}
	log.WithField("profile", prof.Name).Info("profile loaded")

	// Reloads land here and are applied at the next tick boundary so a state
	// mid-flight never sees two configurations.
	var pendingMu sync.Mutex
	var pendingConfig *player.Config
	stopWatch, err := profile.Watch(*profilePath, func(p profile.Profile) {
		c, err := p.Config()
		if err != nil {
			log.WithError(err).Warn("ignoring profile reload")
			return
		}
		pendingMu.Lock()
		pendingConfig = &c
		pendingMu.Unlock()
	})
	if err != nil {
		log.WithError(err).Warn("profile hot reload disabled")
	} else {
		defer stopWatch()
	}

	keys := bridge.NewRPCKeySender(log, conf.Bridge.InjectorURL)
	defer keys.Close()
	detector := detect.NewRPCClient(log, conf.Bridge.DetectorURL)
	defer detector.Close()

	var h *hub.Hub
	if conf.Hub.ListenAddr != "" {
		h = hub.New()
		go func() {
			if err := h.Listen(conf.Hub.ListenAddr); err != nil {
				log.WithError(err).Error("hub listener failed")
			}
		}()
		log.WithField("addr", conf.Hub.ListenAddr).Info("hub listening")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		core.SignalShutdown()
	}()

	ctx := &core.Context{
		Keys: keys,
		RNG:  rng.New(conf.Control.Seed),
	}
	state := &player.State{Config: cfg}
	current := player.Player(player.Detecting{})
	halting := conf.Control.HaltOnStart
	snapshotInterval := uint64(conf.Hub.SnapshotIntervalTicks)
	if snapshotInterval == 0 {
		snapshotInterval = 15
	}

	core.RunLoop(log, func() {
		pendingMu.Lock()
		if pendingConfig != nil {
			state.Config = *pendingConfig
			pendingConfig = nil
		}
		pendingMu.Unlock()

		if h != nil {
			drainCommands(log, h, state, current, &halting)
		}

		ctx.Tick++
		ctx.Halting = halting
		ctx.Minimap = detector.Minimap()
		ctx.Detector = detector

		current = player.Update(ctx, state, current)

		if h != nil && ctx.Tick%snapshotInterval == 0 {
			worker.Submit(snapshotBroadcast(h, ctx.Tick, state, current, halting))
		}
	})
}

// readSettings loads the settings file, creating the default one on first run.
func readSettings(path string) settings.Settings {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := settings.SaveDefault(path); err != nil {
			logrus.WithError(err).Fatal("unable to create default settings")
		}
	}
	conf, err := settings.Load(path)
	if err != nil {
		logrus.WithError(err).Fatal("unable to load settings")
	}
	return conf
}

// drainCommands applies every command queued by hub clients since last tick.
func drainCommands(log *logrus.Logger, h *hub.Hub, state *player.State, current player.Player, halting *bool) {
	for {
		select {
		case cmd := <-h.Commands():
			applyCommand(log, cmd, state, current, halting)
		default:
			return
		}
	}
}

func applyCommand(log *logrus.Logger, cmd hub.Command, state *player.State, current player.Player, halting *bool) {
	switch cmd.Op {
	case "halt":
		*halting = true
		state.PriorityAction = nil
		state.NormalAction = nil
		state.ResetToIdleNextUpdate = true
		log.Info("halted by hub command")
	case "resume":
		*halting = false
		log.Info("resumed by hub command")
	case "reset":
		state.PriorityAction = nil
		state.NormalAction = nil
		state.ResetToIdleNextUpdate = true
		log.Info("reset by hub command")
	case "action":
		if cmd.Action == nil {
			log.Warn("ignoring action command without an action")
			return
		}
		action, ok := buildAction(log, *cmd.Action)
		if !ok {
			return
		}
		if cmd.Action.Priority {
			state.PriorityAction = action
			return
		}
		if !player.CanActionOverride(current, state) {
			log.WithField("action", action).Debug("deferring action, current state not overridable")
		}
		state.NormalAction = action
	default:
		log.WithField("op", cmd.Op).Warn("ignoring unknown hub command")
	}
}

// buildAction translates a hub action spec to a queueable action.
func buildAction(log *logrus.Logger, spec hub.ActionSpec) (player.Action, bool) {
	switch spec.Kind {
	case "key":
		key, ok := bridge.ParseKey(spec.Key)
		if !ok {
			log.WithField("key", spec.Key).Warn("ignoring action with unknown key")
			return nil, false
		}
		action := player.KeyAction{
			Key:             key,
			Count:           max(spec.Count, 1),
			WaitBeforeTicks: game.TicksFromMillis(spec.WaitBeforeMillis),
			WaitAfterTicks:  game.TicksFromMillis(spec.WaitAfterMillis),
		}
		if spec.HasPos {
			action.Position = &player.Position{X: spec.X, Y: spec.Y, AllowAdjusting: spec.Exact}
		}
		return action, true
	case "move":
		return player.MoveAction{
			Position: player.Position{X: spec.X, Y: spec.Y, AllowAdjusting: spec.Exact},
		}, true
	case "solve_rune":
		return player.SolveRuneAction{}, true
	case "familiars_swap":
		return player.FamiliarsSwapAction{
			SwappableSlots:    detect.SwapAll,
			SwappableRarities: []detect.FamiliarRarity{detect.FamiliarRare},
		}, true
	case "panic_town":
		return player.PanicAction{To: player.PanicToTown}, true
	case "panic_channel":
		return player.PanicAction{To: player.PanicToChannel}, true
	default:
		log.WithField("kind", spec.Kind).Warn("ignoring action with unknown kind")
		return nil, false
	}
}

// snapshotBroadcast captures the snapshot on the tick loop and returns the
// broadcast closure, so the worker never reads loop-owned state.
func snapshotBroadcast(h *hub.Hub, tick uint64, state *player.State, current player.Player, halting bool) func() {
	s := hub.Snapshot{
		Tick:    tick,
		State:   current.String(),
		Halting: halting,
	}
	if state.LastKnownPos != nil {
		s.PositionX = state.LastKnownPos.X
		s.PositionY = state.LastKnownPos.Y
		s.HasPosition = true
	}
	if state.NormalAction != nil {
		s.NormalAction = state.NormalAction.String()
	}
	if state.PriorityAction != nil {
		s.PriorityAction = state.PriorityAction.String()
	}
	return func() { h.Broadcast(s) }
}
