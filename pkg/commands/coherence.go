package commands

import (
	"fmt"
	"math/big"

	"github.com/AetherQuanta/aethernet-cli/pkg/coherence"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/urfave/cli/v2"
)

// CoherenceCommand scores an entanglement density without touching the network
var CoherenceCommand = &cli.Command{
	Name:  "coherence",
	Usage: "Compute the coherence score, Beautimus rating and PhiScore for an entanglement density",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "density",
			Usage:    "Dimensionless entanglement density",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "cost",
			Usage: "Traditional cost to reduce by the coherence",
			Value: "100",
		},
	}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		density, err := coherence.ParseDensity(cCtx.String("density"))
		if err != nil {
			return err
		}
		cost, ok := new(big.Rat).SetString(cCtx.String("cost"))
		if !ok {
			return fmt.Errorf("invalid cost %q", cCtx.String("cost"))
		}

		score := coherence.Evaluate(density)
		_, err = fmt.Fprintf(cCtx.App.Writer,
			"Entanglement Density: %s\nCoherence: %s\nBeautimus Rating: %s\nAETH Minted: %s\nEffective Cost: %s\nPhiScore: %s\n",
			density.FloatString(4),
			score.Coherence.FloatString(4),
			score.Beautimus.FloatString(1),
			score.AETH.FloatString(1),
			coherence.EvaluateCost(cost, score.Coherence).FloatString(2),
			score.PhiScore(),
		)
		return err
	},
}
