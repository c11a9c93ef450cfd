package tokenstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kr8tiv/platform-core/pkg/distribution"
	"github.com/kr8tiv/platform-core/pkg/pgutil"
	mghelper "github.com/kr8tiv/platform-core/pkg/pgutil/migrations"
	"github.com/kr8tiv/platform-core/pkg/token"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &TokenDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed tokenstore tests")
}

func newTestToken(mint, creator string, status token.Status) *token.Token {
	now := time.Now().UTC().Truncate(time.Second)
	return &token.Token{
		Mint:          mint,
		Name:          "Test Token " + mint,
		Symbol:        "TST",
		CreatorWallet: creator,
		Status:        status,
		CreatorTier:   "NONE",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestTokenPGStore_CreateGetRoundTrip(t *testing.T) {
	ctx, s := setupStore(t)

	tok := newTestToken("mint-a", "creator-1", token.StatusCurve)
	tok.Split = distribution.SplitConfig{BurnEnabled: true, BurnBps: 3000, DividendsEnabled: true, DividendsBps: 2000}
	if err := s.CreateToken(ctx, tok); err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}

	got, err := s.GetToken(ctx, "mint-a")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got.Split != tok.Split {
		t.Errorf("split config mismatch: got %+v want %+v", got.Split, tok.Split)
	}
	if got.Status != token.StatusCurve || got.Graduated() {
		t.Errorf("expected curve token, got status %s", got.Status)
	}

	if _, err := s.GetToken(ctx, "missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenPGStore_AutomationEligibility(t *testing.T) {
	ctx, s := setupStore(t)

	curve := newTestToken("mint-curve", "creator-1", token.StatusCurve)
	curve.AutomationEnabled = true
	graduated := newTestToken("mint-grad", "creator-1", token.StatusGraduated)
	graduated.AutomationEnabled = true
	optedOut := newTestToken("mint-out", "creator-2", token.StatusGraduated)

	for _, tok := range []*token.Token{curve, graduated, optedOut} {
		if err := s.CreateToken(ctx, tok); err != nil {
			t.Fatalf("CreateToken() failed: %v", err)
		}
	}

	eligible, err := s.ListAutomationEnabled(ctx)
	if err != nil {
		t.Fatalf("ListAutomationEnabled() failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].Mint != "mint-grad" {
		t.Errorf("expected only graduated opted-in token, got %+v", eligible)
	}

	// Graduating the curve token makes it eligible.
	if err := s.MarkGraduated(ctx, "mint-curve"); err != nil {
		t.Fatalf("MarkGraduated() failed: %v", err)
	}
	eligible, err = s.ListAutomationEnabled(ctx)
	if err != nil {
		t.Fatalf("ListAutomationEnabled() failed: %v", err)
	}
	if len(eligible) != 2 {
		t.Errorf("expected 2 eligible tokens after graduation, got %d", len(eligible))
	}

	// Graduation is one-way; a second call finds no curve row.
	if err := s.MarkGraduated(ctx, "mint-curve"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound on repeat graduation, got %v", err)
	}

	got, err := s.GetToken(ctx, "mint-curve")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if !got.Graduated() || got.GraduatedAt == nil {
		t.Errorf("expected graduated token with timestamp, got %+v", got)
	}
}

func TestTokenPGStore_SplitAndFlagUpdates(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.CreateToken(ctx, newTestToken("mint-a", "creator-1", token.StatusGraduated)); err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}

	split := distribution.SplitConfig{LpEnabled: true, LpBps: 5000}
	if err := s.UpdateSplitConfig(ctx, "mint-a", split); err != nil {
		t.Fatalf("UpdateSplitConfig() failed: %v", err)
	}
	if err := s.SetAutomationEnabled(ctx, "mint-a", true); err != nil {
		t.Fatalf("SetAutomationEnabled() failed: %v", err)
	}

	got, err := s.GetToken(ctx, "mint-a")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got.Split != split || !got.AutomationEnabled {
		t.Errorf("expected updated split and flag, got %+v", got)
	}

	if err := s.UpdateSplitConfig(ctx, "missing", split); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenPGStore_AggregateIncrements(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.CreateToken(ctx, newTestToken("mint-a", "creator-1", token.StatusGraduated)); err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}

	if err := s.IncrementFeesCollected(ctx, "mint-a", 1000); err != nil {
		t.Fatalf("IncrementFeesCollected() failed: %v", err)
	}
	if err := s.IncrementFeesCollected(ctx, "mint-a", 500); err != nil {
		t.Fatalf("IncrementFeesCollected() failed: %v", err)
	}
	if err := s.IncrementTokensBurned(ctx, "mint-a", 300); err != nil {
		t.Fatalf("IncrementTokensBurned() failed: %v", err)
	}
	if err := s.IncrementLpAdded(ctx, "mint-a", 200); err != nil {
		t.Fatalf("IncrementLpAdded() failed: %v", err)
	}
	if err := s.IncrementDividendsPaid(ctx, "mint-a", 100); err != nil {
		t.Fatalf("IncrementDividendsPaid() failed: %v", err)
	}

	got, err := s.GetToken(ctx, "mint-a")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got.FeesCollected != 1500 || got.TokensBurned != 300 || got.LpAdded != 200 || got.DividendsPaid != 100 {
		t.Errorf("aggregate mismatch: %+v", got)
	}

	if err := s.TouchAutomationRun(ctx, "mint-a"); err != nil {
		t.Fatalf("TouchAutomationRun() failed: %v", err)
	}
	got, err = s.GetToken(ctx, "mint-a")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if got.LastAutomationRun == nil {
		t.Errorf("expected last automation run set")
	}
}

func TestTokenPGStore_CreatorDiscountFanOut(t *testing.T) {
	ctx, s := setupStore(t)

	for _, mint := range []string{"mint-a", "mint-b"} {
		if err := s.CreateToken(ctx, newTestToken(mint, "creator-1", token.StatusGraduated)); err != nil {
			t.Fatalf("CreateToken() failed: %v", err)
		}
	}
	if err := s.CreateToken(ctx, newTestToken("mint-c", "creator-2", token.StatusGraduated)); err != nil {
		t.Fatalf("CreateToken() failed: %v", err)
	}

	if err := s.UpdateCreatorDiscount(ctx, "creator-1", "SILVER", 25); err != nil {
		t.Fatalf("UpdateCreatorDiscount() failed: %v", err)
	}

	for _, mint := range []string{"mint-a", "mint-b"} {
		got, err := s.GetToken(ctx, mint)
		if err != nil {
			t.Fatalf("GetToken() failed: %v", err)
		}
		if got.CreatorTier != "SILVER" || got.CreatorDiscountPercent != 25 {
			t.Errorf("token %s: expected SILVER/25, got %s/%d", mint, got.CreatorTier, got.CreatorDiscountPercent)
		}
	}

	untouched, err := s.GetToken(ctx, "mint-c")
	if err != nil {
		t.Fatalf("GetToken() failed: %v", err)
	}
	if untouched.CreatorTier != "NONE" || untouched.CreatorDiscountPercent != 0 {
		t.Errorf("expected other creator untouched, got %s/%d", untouched.CreatorTier, untouched.CreatorDiscountPercent)
	}
}
