package automation

import (
	"context"
	"sync"
	"time"

	"github.com/kr8tiv/platform-core/pkg/jobdb"
	"github.com/kr8tiv/platform-core/pkg/token"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"
)

// MockExecutor is a mock implementation of ChainExecutor
type MockExecutor struct {
	ClaimFeesFunc           func(ctx context.Context, mint string) (uint64, string, error)
	ExecuteBurnFunc         func(ctx context.Context, mint string, amount uint64) (string, error)
	AddLiquidityFunc        func(ctx context.Context, mint string, amount uint64) (string, error)
	DistributeDividendsFunc func(ctx context.Context, mint string, amount uint64) (string, error)

	mu     sync.Mutex
	Claims int
	Burns  []uint64
	Lps    []uint64
	Divs   []uint64
}

func (m *MockExecutor) ClaimFees(ctx context.Context, mint string) (uint64, string, error) {
	m.mu.Lock()
	m.Claims++
	m.mu.Unlock()
	if m.ClaimFeesFunc != nil {
		return m.ClaimFeesFunc(ctx, mint)
	}
	return 0, "sig-claim", nil
}

func (m *MockExecutor) ExecuteBurn(ctx context.Context, mint string, amount uint64) (string, error) {
	m.mu.Lock()
	m.Burns = append(m.Burns, amount)
	m.mu.Unlock()
	if m.ExecuteBurnFunc != nil {
		return m.ExecuteBurnFunc(ctx, mint, amount)
	}
	return "sig-burn", nil
}

func (m *MockExecutor) AddLiquidity(ctx context.Context, mint string, amount uint64) (string, error) {
	m.mu.Lock()
	m.Lps = append(m.Lps, amount)
	m.mu.Unlock()
	if m.AddLiquidityFunc != nil {
		return m.AddLiquidityFunc(ctx, mint, amount)
	}
	return "sig-lp", nil
}

func (m *MockExecutor) DistributeDividends(ctx context.Context, mint string, amount uint64) (string, error) {
	m.mu.Lock()
	m.Divs = append(m.Divs, amount)
	m.mu.Unlock()
	if m.DistributeDividendsFunc != nil {
		return m.DistributeDividendsFunc(ctx, mint, amount)
	}
	return "sig-div", nil
}

func (m *MockExecutor) claimCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Claims
}

// memJobStore is an in-memory JobStore
type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*jobdb.AutomationJob
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*jobdb.AutomationJob)}
}

func (m *memJobStore) CreateJob(_ context.Context, job *jobdb.AutomationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.Status = jobdb.JobStatusPending
	cp.CreatedAt = time.Now()
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobStore) GetJob(_ context.Context, id string) (*jobdb.AutomationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, jobdb.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobStore) MarkRunning(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != jobdb.JobStatusPending {
		return jobdb.ErrJobNotFound
	}
	now := time.Now()
	job.Status = jobdb.JobStatusRunning
	job.StartedAt = &now
	return nil
}

func (m *memJobStore) MarkCompleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return jobdb.ErrJobNotFound
	}
	now := time.Now()
	job.Status = jobdb.JobStatusCompleted
	job.CompletedAt = &now
	return nil
}

func (m *memJobStore) MarkFailed(_ context.Context, id, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return jobdb.ErrJobNotFound
	}
	now := time.Now()
	job.Status = jobdb.JobStatusFailed
	job.ErrorMessage = &errorMessage
	job.RetryCount++
	job.CompletedAt = &now
	return nil
}

func (m *memJobStore) RecordStepResult(_ context.Context, id string, step jobdb.JobType, amount uint64, signature string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return jobdb.ErrJobNotFound
	}
	switch step {
	case jobdb.JobTypeClaimFees:
		job.FeesClaimed = amount
		job.ClaimSignature = &signature
	case jobdb.JobTypeBurn:
		job.TokensBurned = amount
		job.BurnSignature = &signature
	case jobdb.JobTypeAddLp:
		job.LpAdded = amount
		job.LpSignature = &signature
	case jobdb.JobTypePayDividends:
		job.DividendsPaid = amount
		job.DividendsSignature = &signature
	}
	return nil
}

func (m *memJobStore) DeleteCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, job := range m.jobs {
		if job.Status == jobdb.JobStatusCompleted && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memJobStore) all() []*jobdb.AutomationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]*jobdb.AutomationJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		cp := *job
		jobs = append(jobs, &cp)
	}
	return jobs
}

// memTokenStore is an in-memory TokenStore
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*token.Token
}

func newMemTokenStore(tokens ...*token.Token) *memTokenStore {
	m := &memTokenStore{tokens: make(map[string]*token.Token)}
	for _, tok := range tokens {
		cp := *tok
		m.tokens[tok.Mint] = &cp
	}
	return m
}

func (m *memTokenStore) GetToken(_ context.Context, mint string) (*token.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[mint]
	if !ok {
		return nil, tokenstore.ErrTokenNotFound
	}
	cp := *tok
	return &cp, nil
}

func (m *memTokenStore) ListAutomationEnabled(_ context.Context) ([]*token.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*token.Token
	for _, tok := range m.tokens {
		if tok.AutomationEnabled && tok.Graduated() {
			cp := *tok
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTokenStore) TouchAutomationRun(_ context.Context, mint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok, ok := m.tokens[mint]; ok {
		now := time.Now()
		tok.LastAutomationRun = &now
	}
	return nil
}

func (m *memTokenStore) IncrementFeesCollected(_ context.Context, mint string, amount uint64) error {
	return m.increment(mint, func(tok *token.Token) { tok.FeesCollected += amount })
}

func (m *memTokenStore) IncrementTokensBurned(_ context.Context, mint string, amount uint64) error {
	return m.increment(mint, func(tok *token.Token) { tok.TokensBurned += amount })
}

func (m *memTokenStore) IncrementLpAdded(_ context.Context, mint string, amount uint64) error {
	return m.increment(mint, func(tok *token.Token) { tok.LpAdded += amount })
}

func (m *memTokenStore) IncrementDividendsPaid(_ context.Context, mint string, amount uint64) error {
	return m.increment(mint, func(tok *token.Token) { tok.DividendsPaid += amount })
}

func (m *memTokenStore) increment(mint string, apply func(*token.Token)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[mint]
	if !ok {
		return tokenstore.ErrTokenNotFound
	}
	apply(tok)
	return nil
}

// MockPool is a mock implementation of RewardPool
type MockPool struct {
	AddToRewardPoolFunc func(ctx context.Context, amount uint64) error

	mu    sync.Mutex
	Total uint64
}

func (m *MockPool) AddToRewardPool(ctx context.Context, amount uint64) error {
	if m.AddToRewardPoolFunc != nil {
		return m.AddToRewardPoolFunc(ctx, amount)
	}
	m.mu.Lock()
	m.Total += amount
	m.mu.Unlock()
	return nil
}
