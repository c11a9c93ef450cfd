package solana

import (
	"errors"
	"time"

	"github.com/creasty/defaults"
)

// ClientConfig holds the executor's connection and signing settings.
type ClientConfig struct {
	RPCURL           string        `default:""`
	Commitment       string        `default:"confirmed"`
	FeeProgramID     string        `default:""`
	StakingProgramID string        `default:""`
	TreasuryAccount  string        `default:""`
	AuthorityKeyFile string        `default:""`
	RequestTimeout   time.Duration `default:"30s"`
	SkipPreflight    bool          `default:"false"`
}

// Validate fills defaults and checks the required fields.
func (c *ClientConfig) Validate() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	if c.RPCURL == "" {
		return errors.New("solana rpc url is required")
	}
	if c.FeeProgramID == "" {
		return errors.New("fee program id is required")
	}
	if c.StakingProgramID == "" {
		return errors.New("staking program id is required")
	}
	if c.AuthorityKeyFile == "" {
		return errors.New("authority key file is required")
	}
	return nil
}
