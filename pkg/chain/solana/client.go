// Package solana implements the on-chain executor for the fee and staking
// programs.
package solana

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/kr8tiv/platform-core/internal/metrics"
	"github.com/kr8tiv/platform-core/pkg/graduation"
)

// PDA seeds of the fee and staking programs.
var (
	feeVaultSeed    = []byte("fee_vault")
	rewardVaultSeed = []byte("reward_vault")
	curveSeed       = []byte("curve")
)

// Executor submits fee automation and reward transactions signed by the
// platform authority.
type Executor struct {
	cfg            ClientConfig
	client         *rpc.Client
	authority      solanago.PrivateKey
	feeProgram     solanago.PublicKey
	stakingProgram solanago.PublicKey
	treasury       solanago.PublicKey
	commitment     rpc.CommitmentType
	logger         *zap.Logger
}

// NewExecutor creates an executor from config, loading the authority keypair
// from disk.
func NewExecutor(cfg ClientConfig, logger *zap.Logger) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solana config: %w", err)
	}

	authority, err := solanago.PrivateKeyFromSolanaKeygenFile(cfg.AuthorityKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load authority key: %w", err)
	}

	feeProgram, err := solanago.PublicKeyFromBase58(cfg.FeeProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid fee program id: %w", err)
	}
	stakingProgram, err := solanago.PublicKeyFromBase58(cfg.StakingProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid staking program id: %w", err)
	}

	treasury := authority.PublicKey()
	if cfg.TreasuryAccount != "" {
		treasury, err = solanago.PublicKeyFromBase58(cfg.TreasuryAccount)
		if err != nil {
			return nil, fmt.Errorf("invalid treasury account: %w", err)
		}
	}

	return &Executor{
		cfg:            cfg,
		client:         rpc.New(cfg.RPCURL),
		authority:      authority,
		feeProgram:     feeProgram,
		stakingProgram: stakingProgram,
		treasury:       treasury,
		commitment:     commitmentFor(cfg.Commitment),
		logger:         logger,
	}, nil
}

// ClaimFees sweeps the token's accrued fee vault into the treasury. The
// claimed amount is the vault balance read just before the sweep; a zero
// balance skips the transaction entirely.
func (e *Executor) ClaimFees(ctx context.Context, mint string) (uint64, string, error) {
	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, "", fmt.Errorf("invalid mint: %w", err)
	}
	feeVault, _, err := solanago.FindProgramAddress([][]byte{feeVaultSeed, mintKey.Bytes()}, e.feeProgram)
	if err != nil {
		return 0, "", fmt.Errorf("failed to derive fee vault: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	balance, err := e.client.GetTokenAccountBalance(ctx, feeVault, e.commitment)
	if err != nil {
		metrics.ChainRequestsTotal.WithLabelValues("claim_fees", "failed").Inc()
		return 0, "", fmt.Errorf("failed to read fee vault balance: %w", err)
	}
	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("unparseable vault balance %q: %w", balance.Value.Amount, err)
	}
	if amount == 0 {
		return 0, "", nil
	}

	accounts := solanago.AccountMetaSlice{
		solanago.NewAccountMeta(mintKey, false, false),
		solanago.NewAccountMeta(feeVault, true, false),
		solanago.NewAccountMeta(e.treasury, true, false),
		solanago.NewAccountMeta(e.authority.PublicKey(), true, true),
	}
	signature, err := e.send(ctx, "claim_fees", e.feeProgram, accounts, anchorDiscriminator("claim_fees"))
	if err != nil {
		return 0, "", err
	}

	e.logger.Info("Claimed fees",
		zap.String("mint", mint),
		zap.Uint64("amount", amount),
		zap.String("signature", signature))
	return amount, signature, nil
}

// ExecuteBurn burns amount of the token from the treasury.
func (e *Executor) ExecuteBurn(ctx context.Context, mint string, amount uint64) (string, error) {
	return e.treasuryOp(ctx, "execute_burn", mint, amount)
}

// AddLiquidity moves amount from the treasury into the token's DEX pool.
func (e *Executor) AddLiquidity(ctx context.Context, mint string, amount uint64) (string, error) {
	return e.treasuryOp(ctx, "add_liquidity", mint, amount)
}

// DistributeDividends moves amount from the treasury into the staking reward
// vault.
func (e *Executor) DistributeDividends(ctx context.Context, mint string, amount uint64) (string, error) {
	return e.treasuryOp(ctx, "distribute_dividends", mint, amount)
}

func (e *Executor) treasuryOp(ctx context.Context, op, mint string, amount uint64) (string, error) {
	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	accounts := solanago.AccountMetaSlice{
		solanago.NewAccountMeta(mintKey, true, false),
		solanago.NewAccountMeta(e.treasury, true, false),
		solanago.NewAccountMeta(e.authority.PublicKey(), true, true),
	}
	signature, err := e.send(ctx, op, e.feeProgram, accounts, withAmount(anchorDiscriminator(op), amount))
	if err != nil {
		return "", err
	}

	e.logger.Info("Executed treasury operation",
		zap.String("operation", op),
		zap.String("mint", mint),
		zap.Uint64("amount", amount),
		zap.String("signature", signature))
	return signature, nil
}

// SettleReward pays a staking reward from the reward vault to the wallet.
func (e *Executor) SettleReward(ctx context.Context, wallet string, amount uint64) (string, error) {
	recipient, err := solanago.PublicKeyFromBase58(wallet)
	if err != nil {
		return "", fmt.Errorf("invalid wallet: %w", err)
	}
	rewardVault, _, err := solanago.FindProgramAddress([][]byte{rewardVaultSeed}, e.stakingProgram)
	if err != nil {
		return "", fmt.Errorf("failed to derive reward vault: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	accounts := solanago.AccountMetaSlice{
		solanago.NewAccountMeta(rewardVault, true, false),
		solanago.NewAccountMeta(recipient, true, false),
		solanago.NewAccountMeta(e.authority.PublicKey(), true, true),
	}
	signature, err := e.send(ctx, "settle_reward", e.stakingProgram, accounts, withAmount(anchorDiscriminator("settle_reward"), amount))
	if err != nil {
		return "", err
	}

	e.logger.Info("Settled reward",
		zap.String("wallet", wallet),
		zap.Uint64("amount", amount),
		zap.String("signature", signature))
	return signature, nil
}

// CurveState reads the token's bonding curve account. The account layout is
// the Anchor discriminator followed by sol_raised u64, target_sol u64 and a
// completion flag byte.
func (e *Executor) CurveState(ctx context.Context, mint string) (*graduation.CurveState, error) {
	mintKey, err := solanago.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint: %w", err)
	}
	curve, _, err := solanago.FindProgramAddress([][]byte{curveSeed, mintKey.Bytes()}, e.feeProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive curve account: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	info, err := e.client.GetAccountInfoWithOpts(ctx, curve, &rpc.GetAccountInfoOpts{Commitment: e.commitment})
	if err != nil {
		return nil, fmt.Errorf("failed to read curve account: %w", err)
	}
	data := info.Value.Data.GetBinary()
	if len(data) < 25 {
		return nil, fmt.Errorf("curve account data too short: %d bytes", len(data))
	}

	return &graduation.CurveState{
		SolRaised: binary.LittleEndian.Uint64(data[8:16]),
		TargetSol: binary.LittleEndian.Uint64(data[16:24]),
		Complete:  data[24] != 0,
	}, nil
}

func (e *Executor) send(ctx context.Context, op string, program solanago.PublicKey, accounts solanago.AccountMetaSlice, data []byte) (string, error) {
	recent, err := e.client.GetLatestBlockhash(ctx, e.commitment)
	if err != nil {
		metrics.ChainRequestsTotal.WithLabelValues(op, "failed").Inc()
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{solanago.NewInstruction(program, accounts, data)},
		recent.Value.Blockhash,
		solanago.TransactionPayer(e.authority.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if e.authority.PublicKey().Equals(key) {
			return &e.authority
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := e.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       e.cfg.SkipPreflight,
		PreflightCommitment: e.commitment,
	})
	if err != nil {
		metrics.ChainRequestsTotal.WithLabelValues(op, "failed").Inc()
		return "", fmt.Errorf("failed to send %s transaction: %w", op, err)
	}
	metrics.ChainRequestsTotal.WithLabelValues(op, "sent").Inc()

	return sig.String(), nil
}

func commitmentFor(level string) rpc.CommitmentType {
	switch level {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// anchorDiscriminator derives the 8-byte instruction discriminator used by
// Anchor programs.
func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

func withAmount(data []byte, amount uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, amount)
	return append(data, buf...)
}
