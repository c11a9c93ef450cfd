// Package automation implements the fee automation cycle orchestrator.
package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kr8tiv/platform-core/internal/metrics"
	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	"github.com/kr8tiv/platform-core/pkg/config"
	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/jobdb"
	"github.com/kr8tiv/platform-core/pkg/token"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"
)

var (
	ErrNotGraduated   = errors.New("token has not graduated")
	ErrUnknownJobType = errors.New("unknown automation job type")
)

// ChainExecutor defines the on-chain operations the orchestrator drives
type ChainExecutor interface {
	ClaimFees(ctx context.Context, mint string) (amount uint64, signature string, err error)
	ExecuteBurn(ctx context.Context, mint string, amount uint64) (signature string, err error)
	AddLiquidity(ctx context.Context, mint string, amount uint64) (signature string, err error)
	DistributeDividends(ctx context.Context, mint string, amount uint64) (signature string, err error)
}

// JobStore defines the job ledger operations the orchestrator needs
type JobStore interface {
	CreateJob(ctx context.Context, job *jobdb.AutomationJob) error
	GetJob(ctx context.Context, id string) (*jobdb.AutomationJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	RecordStepResult(ctx context.Context, id string, step jobdb.JobType, amount uint64, signature string) error
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenStore defines the token persistence operations the orchestrator needs
type TokenStore interface {
	GetToken(ctx context.Context, mint string) (*token.Token, error)
	ListAutomationEnabled(ctx context.Context) ([]*token.Token, error)
	TouchAutomationRun(ctx context.Context, mint string) error
	IncrementFeesCollected(ctx context.Context, mint string, amount uint64) error
	IncrementTokensBurned(ctx context.Context, mint string, amount uint64) error
	IncrementLpAdded(ctx context.Context, mint string, amount uint64) error
	IncrementDividendsPaid(ctx context.Context, mint string, amount uint64) error
}

// RewardPool receives the dividends leg of each cycle
type RewardPool interface {
	AddToRewardPool(ctx context.Context, amount uint64) error
}

// CycleSummary reports the outcome of one full scheduled cycle.
type CycleSummary struct {
	Eligible  int
	Processed int
	Failed    int
}

// Orchestrator drives fee automation cycles across all eligible tokens.
type Orchestrator struct {
	cfg      config.AutomationConfig
	executor ChainExecutor
	jobs     JobStore
	tokens   TokenStore
	pool     RewardPool
	logger   *zap.Logger
	now      func() time.Time

	running atomic.Bool
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator creates a new automation orchestrator
func NewOrchestrator(
	cfg config.AutomationConfig,
	executor ChainExecutor,
	jobs JobStore,
	tokens TokenStore,
	pool RewardPool,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		executor: executor,
		jobs:     jobs,
		tokens:   tokens,
		pool:     pool,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunCycle processes every automation-enabled graduated token once. Only one
// cycle runs at a time; a call that overlaps a running cycle is a silent
// no-op so schedule ticks can never pile up.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		o.logger.Debug("Automation cycle already running, skipping tick")
		return &CycleSummary{}, nil
	}
	defer o.running.Store(false)

	tokens, err := o.tokens.ListAutomationEnabled(ctx)
	if err != nil {
		metrics.AutomationCyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list automation-enabled tokens: %w", err)
	}

	summary := &CycleSummary{Eligible: len(tokens)}
	if len(tokens) == 0 {
		metrics.AutomationCyclesTotal.WithLabelValues("empty").Inc()
		return summary, nil
	}

	o.logger.Info("Starting automation cycle", zap.Int("eligible_tokens", len(tokens)))

	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.WorkerPoolSize)

	for _, tok := range tokens {
		g.Go(func() error {
			job := newJob(tok.Mint, jobdb.JobTypeFullCycle, jobdb.TriggerScheduled)
			if err := o.jobs.CreateJob(gctx, job); err != nil {
				failed.Add(1)
				o.logger.Error("Failed to create cycle job",
					zap.String("mint", tok.Mint), zap.Error(err))
				return nil
			}
			if err := o.processFullCycle(gctx, job, tok); err != nil {
				failed.Add(1)
				o.logger.Error("Cycle job failed",
					zap.String("mint", tok.Mint),
					zap.String("job_id", job.ID),
					zap.Error(err))
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	// Workers swallow their own errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		metrics.AutomationCyclesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	summary.Processed = int(processed.Load())
	summary.Failed = int(failed.Load())
	metrics.AutomationCyclesTotal.WithLabelValues("completed").Inc()

	o.logger.Info("Automation cycle finished",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// TriggerAutomation runs one job for one token on demand and returns the
// finished job record.
func (o *Orchestrator) TriggerAutomation(ctx context.Context, mint string, jobType jobdb.JobType) (*jobdb.AutomationJob, error) {
	switch jobType {
	case jobdb.JobTypeFullCycle, jobdb.JobTypeClaimFees, jobdb.JobTypeBurn, jobdb.JobTypeAddLp, jobdb.JobTypePayDividends:
	default:
		return nil, apperrors.BadRequestError(ErrUnknownJobType, fmt.Sprintf("unknown job type %q", jobType))
	}

	tok, err := o.tokens.GetToken(ctx, mint)
	if errors.Is(err, tokenstore.ErrTokenNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if !tok.Graduated() {
		return nil, apperrors.ConflictError(ErrNotGraduated, "fees accrue only after graduation")
	}

	// The job row is written before any chain work so a crash mid-run still
	// leaves an auditable record.
	job := newJob(mint, jobType, jobdb.TriggerManual)
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if jobType == jobdb.JobTypeFullCycle {
		err = o.processFullCycle(ctx, job, tok)
	} else {
		err = o.processSingleStep(ctx, job, tok)
	}
	if err != nil {
		final, getErr := o.jobs.GetJob(ctx, job.ID)
		if getErr != nil {
			return nil, err
		}
		return final, err
	}

	return o.jobs.GetJob(ctx, job.ID)
}

// Cleanup deletes completed jobs older than the configured retention window.
// Failed jobs are kept so their error history survives.
func (o *Orchestrator) Cleanup(ctx context.Context) (int64, error) {
	cutoff := o.now().Add(-o.cfg.JobRetention)
	deleted, err := o.jobs.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old jobs: %w", err)
	}
	if deleted > 0 {
		o.logger.Info("Cleaned up old automation jobs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// processFullCycle runs claim then the configured distribution legs.
//
// The claim is the only fail-fast step: with no claimed fees there is nothing
// to distribute. Each leg after it is best effort so one chain failure cannot
// strand funds already claimed; the failed leg's amount simply stays in the
// treasury for the next cycle.
func (o *Orchestrator) processFullCycle(ctx context.Context, job *jobdb.AutomationJob, tok *token.Token) error {
	start := o.now()
	defer func() {
		metrics.AutomationJobDuration.WithLabelValues(string(jobdb.JobTypeFullCycle)).Observe(o.now().Sub(start).Seconds())
	}()

	if err := o.jobs.MarkRunning(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	claimed, err := o.claimStep(ctx, job, tok)
	if err != nil {
		o.failJob(ctx, job, err)
		return err
	}

	if claimed == 0 {
		o.completeJob(ctx, job, tok)
		return nil
	}

	split, err := distribution.Plan(claimed, tok.Split)
	if err != nil {
		o.failJob(ctx, job, err)
		return err
	}

	var stepErrs []string
	o.runLeg(ctx, job, tok, jobdb.JobTypeBurn, split.Burn, &stepErrs)
	o.runLeg(ctx, job, tok, jobdb.JobTypeAddLp, split.Lp, &stepErrs)
	o.runLeg(ctx, job, tok, jobdb.JobTypePayDividends, split.Dividends, &stepErrs)

	if len(stepErrs) > 0 {
		// Completed with partial distribution; unexecuted leg amounts stay
		// in the treasury for the next cycle.
		o.logger.Warn("Cycle completed with failed legs",
			zap.String("mint", tok.Mint),
			zap.Strings("failed_legs", stepErrs))
	}

	o.completeJob(ctx, job, tok)
	return nil
}

// processSingleStep runs one manually requested leg. Unless reclaiming is
// disabled in config, it claims accrued fees first and sizes the leg from
// that fresh claim using the token's split config.
func (o *Orchestrator) processSingleStep(ctx context.Context, job *jobdb.AutomationJob, tok *token.Token) error {
	start := o.now()
	defer func() {
		metrics.AutomationJobDuration.WithLabelValues(string(job.JobType)).Observe(o.now().Sub(start).Seconds())
	}()

	if err := o.jobs.MarkRunning(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	var claimed uint64
	if job.JobType == jobdb.JobTypeClaimFees || o.cfg.ReclaimOnManualTrigger {
		var err error
		claimed, err = o.claimStep(ctx, job, tok)
		if err != nil {
			o.failJob(ctx, job, err)
			return err
		}
	}

	if job.JobType == jobdb.JobTypeClaimFees {
		o.completeJob(ctx, job, tok)
		return nil
	}

	split, err := distribution.Plan(claimed, tok.Split)
	if err != nil {
		o.failJob(ctx, job, err)
		return err
	}

	var amount uint64
	switch job.JobType {
	case jobdb.JobTypeBurn:
		amount = split.Burn
	case jobdb.JobTypeAddLp:
		amount = split.Lp
	case jobdb.JobTypePayDividends:
		amount = split.Dividends
	}

	if amount > 0 {
		var stepErrs []string
		o.runLeg(ctx, job, tok, job.JobType, amount, &stepErrs)
		if len(stepErrs) > 0 {
			err := fmt.Errorf("step failed: %s", strings.Join(stepErrs, "; "))
			o.failJob(ctx, job, err)
			return err
		}
	}

	o.completeJob(ctx, job, tok)
	return nil
}

// claimStep claims accrued fees and records the result on the job.
func (o *Orchestrator) claimStep(ctx context.Context, job *jobdb.AutomationJob, tok *token.Token) (uint64, error) {
	amount, signature, err := o.executor.ClaimFees(ctx, tok.Mint)
	if err != nil {
		metrics.AutomationStepsTotal.WithLabelValues(string(jobdb.JobTypeClaimFees), "failed").Inc()
		return 0, fmt.Errorf("claim fees: %w", err)
	}
	metrics.AutomationStepsTotal.WithLabelValues(string(jobdb.JobTypeClaimFees), "completed").Inc()
	metrics.FeesClaimedAmount.Observe(float64(amount))

	if err := o.jobs.RecordStepResult(ctx, job.ID, jobdb.JobTypeClaimFees, amount, signature); err != nil {
		return 0, fmt.Errorf("record claim result: %w", err)
	}
	if amount > 0 {
		if err := o.tokens.IncrementFeesCollected(ctx, tok.Mint, amount); err != nil {
			o.logger.Error("Failed to record claimed fees aggregate",
				zap.String("mint", tok.Mint), zap.Error(err))
		}
	}
	return amount, nil
}

// runLeg executes one distribution leg, best effort. Failures are appended to
// stepErrs; success updates the job row and the token's lifetime aggregates.
func (o *Orchestrator) runLeg(ctx context.Context, job *jobdb.AutomationJob, tok *token.Token, leg jobdb.JobType, amount uint64, stepErrs *[]string) {
	if amount == 0 {
		return
	}

	var signature string
	var err error
	switch leg {
	case jobdb.JobTypeBurn:
		signature, err = o.executor.ExecuteBurn(ctx, tok.Mint, amount)
	case jobdb.JobTypeAddLp:
		signature, err = o.executor.AddLiquidity(ctx, tok.Mint, amount)
	case jobdb.JobTypePayDividends:
		signature, err = o.executor.DistributeDividends(ctx, tok.Mint, amount)
	}
	if err != nil {
		metrics.AutomationStepsTotal.WithLabelValues(string(leg), "failed").Inc()
		*stepErrs = append(*stepErrs, fmt.Sprintf("%s: %v", leg, err))
		o.logger.Warn("Distribution leg failed",
			zap.String("mint", tok.Mint),
			zap.String("leg", string(leg)),
			zap.Uint64("amount", amount),
			zap.Error(err))
		return
	}
	metrics.AutomationStepsTotal.WithLabelValues(string(leg), "completed").Inc()

	if err := o.jobs.RecordStepResult(ctx, job.ID, leg, amount, signature); err != nil {
		o.logger.Error("Failed to record step result",
			zap.String("job_id", job.ID),
			zap.String("leg", string(leg)),
			zap.Error(err))
	}

	var aggErr error
	switch leg {
	case jobdb.JobTypeBurn:
		aggErr = o.tokens.IncrementTokensBurned(ctx, tok.Mint, amount)
	case jobdb.JobTypeAddLp:
		aggErr = o.tokens.IncrementLpAdded(ctx, tok.Mint, amount)
	case jobdb.JobTypePayDividends:
		aggErr = o.tokens.IncrementDividendsPaid(ctx, tok.Mint, amount)
		if aggErr == nil {
			if err := o.pool.AddToRewardPool(ctx, amount); err != nil {
				o.logger.Error("Failed to credit reward pool",
					zap.String("mint", tok.Mint),
					zap.Uint64("amount", amount),
					zap.Error(err))
			}
		}
	}
	if aggErr != nil {
		o.logger.Error("Failed to update token aggregate",
			zap.String("mint", tok.Mint),
			zap.String("leg", string(leg)),
			zap.Error(aggErr))
	}
}

func (o *Orchestrator) completeJob(ctx context.Context, job *jobdb.AutomationJob, tok *token.Token) {
	if err := o.jobs.MarkCompleted(ctx, job.ID); err != nil {
		o.logger.Error("Failed to mark job completed",
			zap.String("job_id", job.ID), zap.Error(err))
	}
	if err := o.tokens.TouchAutomationRun(ctx, tok.Mint); err != nil {
		o.logger.Error("Failed to touch automation run",
			zap.String("mint", tok.Mint), zap.Error(err))
	}
	metrics.AutomationJobsTotal.WithLabelValues(string(job.JobType), string(job.TriggerType), "completed").Inc()
}

func (o *Orchestrator) failJob(ctx context.Context, job *jobdb.AutomationJob, cause error) {
	if err := o.jobs.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		o.logger.Error("Failed to mark job failed",
			zap.String("job_id", job.ID), zap.Error(err))
	}
	metrics.AutomationJobsTotal.WithLabelValues(string(job.JobType), string(job.TriggerType), "failed").Inc()
}

func newJob(mint string, jobType jobdb.JobType, trigger jobdb.TriggerType) *jobdb.AutomationJob {
	return &jobdb.AutomationJob{
		ID:          uuid.New().String(),
		TokenMint:   mint,
		JobType:     jobType,
		TriggerType: trigger,
		Status:      jobdb.JobStatusPending,
	}
}
