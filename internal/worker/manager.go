package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medrx_backend/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs worker goroutines that consume the prescription stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	consumerID  string
	logger      zerolog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
	// ConsumerID prefixes the consumer names. It must differ between processes
	// sharing the group, or one replays what the other is still handling.
	ConsumerID string
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
		ConsumerID:   DefaultConsumerID(),
	}
}

// DefaultConsumerID is hostname-pid. A restarted container (pid 1) keeps its name
// and replays its own pending entries.
func DefaultConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "rx"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	if cfg.ConsumerID == "" {
		cfg.ConsumerID = DefaultConsumerID()
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
		consumerID:  cfg.ConsumerID,
		logger:      logger.With().Str("component", "worker_manager").Str("consumer_id", cfg.ConsumerID).Logger(),
	}
}

// Start ensures the consumer group exists and launches the workers. Call Stop to shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamPrescriptions, queue.ConsumerGroupNotifications); err != nil {
		m.cancel()
		return err
	}

	for i := 1; i <= m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(i, ConsumerName(m.consumerID, i))
	}

	m.logger.Info().
		Int("workers", m.workerCount).
		Str("stream", queue.StreamPrescriptions).
		Str("group", queue.ConsumerGroupNotifications).
		Msg("workers started")
	return nil
}

// Stop cancels the workers and blocks until they return.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.logger.Info().Msg("workers stopped")
}

// Run starts the workers and blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()
	log := m.logger.With().Int("worker", workerID).Logger()

	// Replay anything this consumer took but never acked before a crash.
	m.processPending(log, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.processMessages(log, consumerName)
		}
	}
}

func (m *Manager) processPending(log zerolog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamPrescriptions, queue.ConsumerGroupNotifications, consumerName, m.batchSize)
		if err != nil {
			if m.ctx.Err() == nil {
				log.Error().Err(err).Msg("read pending failed")
			}
			return
		}
		if len(messages) == 0 {
			return
		}
		log.Info().Int("count", len(messages)).Msg("replaying pending messages")
		m.handleMessages(log, messages)
	}
}

func (m *Manager) processMessages(log zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamPrescriptions,
		queue.ConsumerGroupNotifications,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("read failed")
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	m.handleMessages(log, messages)
}

// handleMessages acks every message after handling, including failed ones;
// a notification is not worth an endless retry loop.
func (m *Manager) handleMessages(log zerolog.Logger, messages []queue.Message) {
	// Acks outlive Stop so a handled message is not replayed.
	ackCtx := context.WithoutCancel(m.ctx)
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("handler error")
		}
		if err := m.consumer.Ack(ackCtx, queue.StreamPrescriptions, queue.ConsumerGroupNotifications, msg.ID); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("ack failed")
		}
	}
}

// ConsumerName is the group consumer name of one worker in the process identified by consumerID.
func ConsumerName(consumerID string, workerID int) string {
	return fmt.Sprintf("%s-worker-%d", consumerID, workerID)
}
