package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"
)

// Engine wires the routing components together and owns the supervised
// background workers (event fanout, heartbeat). Event handling itself is
// synchronous on the caller's goroutine; only side channels (search indexing,
// projections, telemetry) are asynchronous.
type Engine struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	presence          *PresenceTable
	registry          *Registry
	dispatcher        *Dispatcher
	typing            *TypingRelay
	lifecycle         *LifecycleController
	monitoring        *observability.MonitoringManager
	events            chan event.DomainEvent
	permanentSinks    []contract.EventSink
	sinkTimeout       time.Duration
	heartbeatInterval time.Duration
}

type EngineConfig struct {
	BufferSize        int
	PersistTimeout    time.Duration
	SinkTimeout       time.Duration
	HeartbeatInterval time.Duration
	CharReplacement   rune
}

func NewEngine(log *slog.Logger, supervisor contract.ISupervisor,
	repository repositories.IMessageRepository, cfg EngineConfig) (*Engine, error) {
	// Heavy setup (embedded file I/O, Aho-Corasick build) happens here,
	// before anything concurrent is running.
	data, err := LoadCensoredWords()
	if err != nil {
		return nil, fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	moderator, err := moderation.NewModerator(data.Words, cfg.CharReplacement)
	if err != nil {
		return nil, fmt.Errorf("moderator build failed: %w", err)
	}

	monitoring := observability.NewMonitoringManager()
	events := make(chan event.DomainEvent, cfg.BufferSize)
	presence := NewPresenceTable()
	registry := NewRegistry()

	return &Engine{
		log:        log,
		supervisor: supervisor,
		presence:   presence,
		registry:   registry,
		dispatcher: NewDispatcher(log, presence, registry, repository,
			&moderator, monitoring, events, cfg.PersistTimeout),
		typing:            NewTypingRelay(log, presence, monitoring),
		lifecycle:         NewLifecycleController(log, presence, registry, events),
		monitoring:        monitoring,
		events:            events,
		sinkTimeout:       cfg.SinkTimeout,
		heartbeatInterval: cfg.HeartbeatInterval,
	}, nil
}

// Add registers permanent sinks fed by the event fanout.
// Must be called before Start.
func (e *Engine) Add(sinks ...contract.EventSink) {
	e.permanentSinks = append(e.permanentSinks, sinks...)
}

// Start registers the background workers and launches the supervisor.
// It returns immediately; Stop triggers the shutdown.
func (e *Engine) Start(ctx context.Context) {
	fanout := workers.NewEventFanout(e.log, e.events, e.permanentSinks, e.sinkTimeout)
	heartbeat := workers.NewHeartbeatWorker(e.log, e.monitoring, e.presence, e.heartbeatInterval)

	e.supervisor.Add(fanout, heartbeat)

	e.log.Info("Starting engine and all supervised workers")
	go e.supervisor.Run(ctx)
}

// Stop initiates a graceful shutdown of the supervised workers.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
}

func (e *Engine) Dispatcher() *Dispatcher { return e.dispatcher }

func (e *Engine) Typing() *TypingRelay { return e.typing }

func (e *Engine) Lifecycle() *LifecycleController { return e.lifecycle }

func (e *Engine) Presence() *PresenceTable { return e.presence }

func (e *Engine) Registry() *Registry { return e.registry }

func (e *Engine) Monitoring() *observability.MonitoringManager { return e.monitoring }
