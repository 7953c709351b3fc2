package deploy

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Progress tracker rows
const (
	stepFactory = "factory"
	stepDeploy  = "deploy"
	stepSetter  = "setter"
	stepRecord  = "record"
)

// Caller deploys contracts and sends transactions; *common.ContractCaller implements it.
type Caller interface {
	Deploy(ctx context.Context, factory *contracts.ContractFactory, args ...interface{}) (ethcommon.Address, error)
	Transact(ctx context.Context, address ethcommon.Address, contractABI abi.ABI, method string, args ...interface{}) (*types.Receipt, error)
}

// Plan is what one run deploys and records.
type Plan struct {
	Contract string
	Setter   string
	PhiScore *big.Int
	LogFile  string
}

// PlanFromConfig builds a Plan from the deploy section of cfg.
func PlanFromConfig(cfg common.DeployConfig) (*Plan, error) {
	score, err := cfg.PhiScore.Int()
	if err != nil {
		return nil, fmt.Errorf("deploy.phi_score: %w", err)
	}
	return &Plan{
		Contract: cfg.Contract,
		Setter:   cfg.Setter,
		PhiScore: score,
		LogFile:  cfg.LogFile,
	}, nil
}

// Sequencer runs factory, deploy, setter and record in order. The first
// failure stops the run; nothing is retried or rolled back.
type Sequencer struct {
	registry *contracts.Registry
	caller   Caller
	logger   iface.Logger
	tracker  iface.ProgressTracker
	out      io.Writer
	now      func() time.Time
}

type Option func(*Sequencer)

// WithOutput redirects the user-facing lines, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(s *Sequencer) { s.out = w }
}

// WithClock replaces time.Now for the record timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

func NewSequencer(registry *contracts.Registry, caller Caller, logger iface.Logger, tracker iface.ProgressTracker, opts ...Option) *Sequencer {
	s := &Sequencer{
		registry: registry,
		caller:   caller,
		logger:   logger,
		tracker:  tracker,
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sequencer) Run(ctx context.Context, plan *Plan) (*Record, error) {
	defer s.tracker.Clear()

	if plan.PhiScore == nil {
		return nil, fmt.Errorf("plan has no PhiScore")
	}

	// 1. contract factory
	s.progress(stepFactory, 10, fmt.Sprintf("Loading %s artifact", plan.Contract))
	factory, err := s.registry.Factory(plan.Contract)
	if err != nil {
		return nil, fmt.Errorf("contract factory: %w", err)
	}
	input, err := factory.NumericSetter(plan.Setter)
	if err != nil {
		return nil, fmt.Errorf("contract factory: %w", err)
	}
	arg, err := common.CoerceInteger(input.Type, plan.PhiScore)
	if err != nil {
		return nil, fmt.Errorf("contract factory: %s argument: %w", plan.Setter, err)
	}
	s.progress(stepFactory, 100, fmt.Sprintf("%s factory ready", factory.Name))

	// 2. deploy
	s.progress(stepDeploy, 10, fmt.Sprintf("Deploying %s", factory.Name))
	address, err := s.caller.Deploy(ctx, factory)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", factory.Name, err)
	}
	s.progress(stepDeploy, 100, fmt.Sprintf("%s deployed", factory.Name))
	fmt.Fprintf(s.out, "%s deployed to: %s\n", plan.Contract, address.Hex())

	// 3. setter
	value := FormatScaled(plan.PhiScore)
	s.progress(stepSetter, 10, fmt.Sprintf("Calling %s(%s)", plan.Setter, plan.PhiScore))
	receipt, err := s.caller.Transact(ctx, address, factory.ABI, plan.Setter, arg)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", plan.Setter, address.Hex(), err)
	}
	s.logger.Debug("%s mined in tx %s", plan.Setter, receipt.TxHash.Hex())
	s.progress(stepSetter, 100, fmt.Sprintf("%s confirmed", plan.Setter))
	fmt.Fprintf(s.out, "PhiScore set to: %s\n", value)

	// 4. record, under the configured name whatever the artifact calls itself
	record := &Record{
		Timestamp: s.now(),
		Contract:  plan.Contract,
		Address:   address,
		PhiScore:  new(big.Int).Set(plan.PhiScore),
	}
	if err := AppendToLog(plan.LogFile, record); err != nil {
		return nil, fmt.Errorf("record deployment: %w", err)
	}
	s.progress(stepRecord, 100, fmt.Sprintf("Logged to %s", plan.LogFile))
	s.logger.Info("Deployment of %s at %s recorded in %s", plan.Contract, address.Hex(), plan.LogFile)

	return record, nil
}

func (s *Sequencer) progress(step string, pct int, label string) {
	s.tracker.Set(step, pct, label)
	s.tracker.Render()
}
