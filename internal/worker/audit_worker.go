package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rehabcenter/internal/amqp"
	"rehabcenter/internal/metrics"
	"rehabcenter/internal/report"
)

// Duplicate groups, named after the JSON fields of report.Duplicates.
const (
	GroupCabinetCodes       = "cabinets_codes"
	GroupAssetSerials       = "assets_serials"
	GroupAssetSerialLocs    = "assets_serial_loc_pairs"
	GroupSpareSerialSources = "spares_serial_src_pairs"
)

// DuplicateFinder runs one full duplicate scan. *report.Detector implements it.
type DuplicateFinder interface {
	Find(ctx context.Context) (report.Duplicates, error)
}

// AuditWorkerConfig holds configuration for the audit worker
type AuditWorkerConfig struct {
	// Debounce is the quiet period after the last event before a scan runs (default: 5s)
	Debounce time.Duration
}

func DefaultAuditWorkerConfig() AuditWorkerConfig {
	return AuditWorkerConfig{Debounce: 5 * time.Second}
}

// AuditWorker re-runs duplicate detection after bursts of record changes.
type AuditWorker struct {
	finder  DuplicateFinder
	metrics *metrics.Metrics
	config  AuditWorkerConfig

	// buffered to one: a pending trigger absorbs further events
	trigger chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	last    report.Duplicates
}

func NewAuditWorker(finder DuplicateFinder, m *metrics.Metrics, config AuditWorkerConfig) *AuditWorker {
	if config.Debounce <= 0 {
		config.Debounce = DefaultAuditWorkerConfig().Debounce
	}
	return &AuditWorker{
		finder:  finder,
		metrics: m,
		config:  config,
		trigger: make(chan struct{}, 1),
	}
}

// HandleRecordChanged schedules an audit. It never blocks and never fails, so
// the message is always acked.
func (w *AuditWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	slog.DebugContext(ctx, "Record change received",
		"event_id", msg.EventID,
		"kind", msg.Kind,
		"id", msg.ID,
		"action", msg.Action)
	select {
	case w.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Start runs an initial audit and then waits for triggers. Returns an error if
// already running.
func (w *AuditWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("audit worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Audit worker started", "debounce", w.config.Debounce)
	return nil
}

// Stop signals the loop and waits for the audit in flight, if any.
func (w *AuditWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Audit worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Audit worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *AuditWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Last returns the result of the most recent successful audit.
func (w *AuditWorker) Last() report.Duplicates {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *AuditWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	w.RunOnce(ctx)

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-w.trigger:
			// restart the quiet period
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.config.Debounce)
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single audit and publishes its findings.
func (w *AuditWorker) RunOnce(ctx context.Context) error {
	start := time.Now()
	dups, err := w.finder.Find(ctx)
	w.metrics.ObserveAudit(err)
	if err != nil {
		slog.ErrorContext(ctx, "Duplicate audit failed", "error", err)
		return err
	}

	groups := map[string][]string{
		GroupCabinetCodes:       dups.CabinetCodes,
		GroupAssetSerials:       dups.AssetSerials,
		GroupAssetSerialLocs:    dups.AssetSerialLocationPairs,
		GroupSpareSerialSources: dups.SpareSerialSourcePairs,
	}
	for group, values := range groups {
		w.metrics.SetDuplicates(group, len(values))
	}

	w.mu.Lock()
	w.last = dups
	w.mu.Unlock()

	if dups.Empty() {
		slog.InfoContext(ctx, "Duplicate audit clean", "duration", time.Since(start))
		return nil
	}
	for group, values := range groups {
		if len(values) == 0 {
			continue
		}
		slog.WarnContext(ctx, "Duplicate identifiers found",
			"group", group,
			"count", len(values),
			"values", values)
	}
	return nil
}
