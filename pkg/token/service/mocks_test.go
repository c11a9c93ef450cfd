package service

import (
	"context"
	"sync"

	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/token"
	"github.com/kr8tiv/platform-core/pkg/tokenstore"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu     sync.Mutex
	tokens map[string]*token.Token

	createErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{tokens: make(map[string]*token.Token)}
}

func (m *memStore) CreateToken(ctx context.Context, tok *token.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *tok
	m.tokens[tok.Mint] = &cp
	return nil
}

func (m *memStore) GetToken(ctx context.Context, mint string) (*token.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[mint]
	if !ok {
		return nil, tokenstore.ErrTokenNotFound
	}
	cp := *tok
	return &cp, nil
}

func (m *memStore) ListTokens(ctx context.Context) ([]*token.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*token.Token, 0, len(m.tokens))
	for _, tok := range m.tokens {
		cp := *tok
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) UpdateSplitConfig(ctx context.Context, mint string, split distribution.SplitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	tok, ok := m.tokens[mint]
	if !ok {
		return tokenstore.ErrTokenNotFound
	}
	tok.Split = split
	return nil
}

func (m *memStore) SetAutomationEnabled(ctx context.Context, mint string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[mint]
	if !ok {
		return tokenstore.ErrTokenNotFound
	}
	tok.AutomationEnabled = enabled
	return nil
}
