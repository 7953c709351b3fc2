package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AetherQuanta/aethernet-cli/pkg/coherence"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/compiler"
	"github.com/AetherQuanta/aethernet-cli/pkg/deploy"
	"github.com/AetherQuanta/aethernet-cli/pkg/telemetry"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/urfave/cli/v2"
)

// dialBackend connects to the network's RPC endpoint. Tests replace it.
var dialBackend = func(ctx context.Context, url string) (common.Backend, func(), error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// DeployCommand defines the "deploy" command
var DeployCommand = &cli.Command{
	Name:  "deploy",
	Usage: "Compiles, deploys the contract, sets its PhiScore and records the deployment",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Usage: "Network from config.networks (defaults to config.default_network)",
		},
		&cli.BoolFlag{
			Name:  "no-compile",
			Usage: "Use the existing artifacts without running solc",
		},
		&cli.StringFlag{
			Name:  "phi-score",
			Usage: "Integer literal passed to the setter (overrides deploy.phi_score)",
		},
		&cli.StringFlag{
			Name:  "entanglement-density",
			Usage: "Derive the PhiScore from this density's coherence score (1000 x coherence, rounded)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "File the deployment line is appended to (overrides deploy.log_file)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Upper bound for the whole deployment (0 waits for mining indefinitely)",
		},
	}, common.GlobalFlags...),
	Action: DeployRun,
}

// deployContext bounds the run only when a timeout was asked for. Without one
// the run waits for both transactions to be mined, however long that takes.
func deployContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func DeployRun(cCtx *cli.Context) error {
	logger := common.LoggerFromContext(cCtx.Context)
	tracker := common.ProgressTrackerFromContext(cCtx.Context)

	cfg, err := loadProjectConfig(cCtx)
	if err != nil {
		return err
	}
	if cCtx.IsSet("phi-score") && cCtx.IsSet("entanglement-density") {
		return fmt.Errorf("--phi-score and --entanglement-density are mutually exclusive")
	}
	if cCtx.IsSet("phi-score") {
		cfg.Config.Deploy.PhiScore = common.Literal(cCtx.String("phi-score"))
	}
	if cCtx.IsSet("entanglement-density") {
		density, err := coherence.ParseDensity(cCtx.String("entanglement-density"))
		if err != nil {
			return err
		}
		score := coherence.Evaluate(density)
		cfg.Config.Deploy.PhiScore = common.Literal(score.PhiScore().String())
		logger.Info("Coherence %s from density %s gives PhiScore %s", score.Coherence.FloatString(4), cCtx.String("entanglement-density"), cfg.Config.Deploy.PhiScore)
	}
	if cCtx.IsSet("log-file") {
		cfg.Config.Deploy.LogFile = cCtx.String("log-file")
	}
	plan, err := deploy.PlanFromConfig(cfg.Config.Deploy)
	if err != nil {
		return err
	}

	network, err := cfg.Network(cCtx.String("network"))
	if err != nil {
		return err
	}

	ctx, cancel := deployContext(cCtx.Context, cCtx.Duration("timeout"))
	defer cancel()

	if cCtx.Bool("no-compile") {
		logger.Debug("Skipping compile")
	} else if _, err := compiler.New(cfg.Config.Compiler, logger).Compile(ctx); err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	backend, closeBackend, err := dialBackend(ctx, network.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", network.Name, err)
	}
	defer closeBackend()

	chainID, err := common.ResolveChainID(ctx, backend, network.ChainID)
	if err != nil {
		return err
	}
	caller, err := common.NewContractCaller(network.Key, chainID, backend, logger)
	if err != nil {
		return err
	}
	logger.Info("Deploying %s to %s (chain %s) from %s", plan.Contract, network.Name, chainID, caller.From().Hex())

	seq := deploy.NewSequencer(
		contracts.NewRegistry(cfg.Config.Compiler.Artifacts),
		caller,
		logger,
		tracker,
		deploy.WithOutput(cCtx.App.Writer),
	)
	record, err := seq.Run(ctx, plan)
	if err != nil {
		return err
	}

	if metrics, err := telemetry.MetricsFromContext(cCtx.Context); err == nil {
		metrics.AddMetricWithDimensions("Deployment", 1, map[string]string{
			"network":  network.Name,
			"chain_id": chainID.String(),
			"contract": record.Contract,
		})
	}
	return nil
}
