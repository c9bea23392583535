package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/rs/zerolog"
)

// WorkspaceAutomation runs one automation pass for a workspace
type WorkspaceAutomation interface {
	Run(ctx context.Context, workspaceID int32) (*AutomationResult, error)
}

// AutomationWorker is a background worker that periodically runs automation
// for every workspace
type AutomationWorker struct {
	automation    WorkspaceAutomation
	workspaceRepo domain.WorkspaceRepository
	logger        zerolog.Logger
	interval      time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex
	running       bool
}

// AutomationWorkerConfig holds configuration for the automation worker
type AutomationWorkerConfig struct {
	Interval time.Duration // How often to run automation
}

// DefaultAutomationWorkerConfig returns sensible defaults
func DefaultAutomationWorkerConfig() AutomationWorkerConfig {
	return AutomationWorkerConfig{
		Interval: 1 * time.Hour,
	}
}

// NewAutomationWorker creates a new automation worker
func NewAutomationWorker(
	automation WorkspaceAutomation,
	workspaceRepo domain.WorkspaceRepository,
	logger zerolog.Logger,
	config AutomationWorkerConfig,
) *AutomationWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}

	return &AutomationWorker{
		automation:    automation,
		workspaceRepo: workspaceRepo,
		logger:        logger.With().Str("component", "automation_worker").Logger(),
		interval:      config.Interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background automation loop
func (w *AutomationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Starting automation worker")

	go w.run(ctx)
}

// Stop gracefully stops the automation worker
func (w *AutomationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping automation worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Automation worker stopped")
}

func (w *AutomationWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.runAllWorkspaces(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.runAllWorkspaces(ctx)
		}
	}
}

func (w *AutomationWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// runAllWorkspaces runs automation for every workspace. One workspace failing
// does not stop the others.
func (w *AutomationWorker) runAllWorkspaces(ctx context.Context) {
	w.logger.Debug().Msg("Starting automation for all workspaces")
	startTime := time.Now()

	workspaces, err := w.workspaceRepo.GetAll(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to get workspaces for automation")
		return
	}

	totalGenerated := 0
	totalContributions := 0
	totalErrors := 0

	for _, ws := range workspaces {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping automation")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping automation")
			return
		default:
		}

		result, err := w.automation.Run(ctx, ws.ID)
		if err != nil {
			w.logger.Error().
				Err(err).
				Int32("workspace_id", ws.ID).
				Msg("Automation failed for workspace")
			totalErrors++
			continue
		}

		totalContributions += result.Contributions
		totalErrors += len(result.ContributionErrors)
		if result.Recurrence != nil {
			totalGenerated += result.Recurrence.Generated
			totalErrors += len(result.Recurrence.Errors)
		}
	}

	w.logger.Info().
		Int("workspaces", len(workspaces)).
		Int("total_generated", totalGenerated).
		Int("total_contributions", totalContributions).
		Int("total_errors", totalErrors).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed automation run")
}

// RunWorkspace triggers automation for a single workspace outside the schedule
func (w *AutomationWorker) RunWorkspace(ctx context.Context, workspaceID int32) (*AutomationResult, error) {
	w.logger.Debug().Int32("workspace_id", workspaceID).Msg("Manual automation run triggered")
	return w.automation.Run(ctx, workspaceID)
}

// IsRunning returns whether the worker is currently running
func (w *AutomationWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
