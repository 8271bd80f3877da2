// This program runs the gossip consensus simulation: a network of compliant
// nodes on a random follow graph exchanging transactions for a fixed number
// of rounds.
package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scroogecoin/scroogecoin/foundation/gossip"
	"github.com/scroogecoin/scroogecoin/foundation/logger"
)

// build is the git version of this program. It can be set using linker build
// flags.
var build = "develop"

// seededTransactions is how many valid transactions the harness distributes
// across the network before round one.
const seededTransactions = 500

func main() {

	// Construct the application logger.
	log, err := logger.New("SIM")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Sim struct {
			Nodes           int     `conf:"default:100"`
			PGraph          float64 `conf:"default:0.1"`
			PMalicious      float64 `conf:"default:0.15"`
			PTxDistribution float64 `conf:"default:0.01"`
			NumRounds       int     `conf:"default:10"`
			Seed            int64   `conf:"default:1"`
			Scenarios       string
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "gossip consensus simulation",
		},
	}

	const prefix = "SIM"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting simulation", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Scenarios

	scenarios := []gossip.Config{{
		PGraph:          cfg.Sim.PGraph,
		PMalicious:      cfg.Sim.PMalicious,
		PTxDistribution: cfg.Sim.PTxDistribution,
		NumRounds:       cfg.Sim.NumRounds,
	}}

	if cfg.Sim.Scenarios != "" {
		scenarios, err = loadScenarios(cfg.Sim.Scenarios)
		if err != nil {
			return fmt.Errorf("loading scenarios: %w", err)
		}
	}

	for _, scenario := range scenarios {
		runID := uuid.NewString()
		if err := runScenario(log, runID, scenario, cfg.Sim.Nodes, cfg.Sim.Seed); err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
	}

	return nil
}

// =============================================================================

// loadScenarios reads a YAML file holding a list of simulation parameter
// combinations.
func loadScenarios(path string) ([]gossip.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var raw []struct {
		PGraph          float64 `mapstructure:"p_graph"`
		PMalicious      float64 `mapstructure:"p_malicious"`
		PTxDistribution float64 `mapstructure:"p_tx_distribution"`
		NumRounds       int     `mapstructure:"num_rounds"`
	}
	if err := v.UnmarshalKey("scenarios", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("no scenarios in file")
	}

	scenarios := make([]gossip.Config, len(raw))
	for i, s := range raw {
		scenarios[i] = gossip.Config{
			PGraph:          s.PGraph,
			PMalicious:      s.PMalicious,
			PTxDistribution: s.PTxDistribution,
			NumRounds:       s.NumRounds,
		}
	}

	return scenarios, nil
}

// =============================================================================

// runScenario drives one full simulation: build the follow graph, seed the
// transactions, run the rounds, and report the consensus cohorts.
func runScenario(log *zap.SugaredLogger, runID string, scenario gossip.Config, numNodes int, seed int64) error {
	log.Infow("scenario", "run", runID,
		"p_graph", scenario.PGraph,
		"p_malicious", scenario.PMalicious,
		"p_tx_distribution", scenario.PTxDistribution,
		"num_rounds", scenario.NumRounds,
		"nodes", numNodes)

	rng := rand.New(rand.NewSource(seed))

	nodes := make([]*gossip.Node, numNodes)
	for i := range nodes {
		node, err := gossip.NewNode(scenario)
		if err != nil {
			return err
		}
		nodes[i] = node
	}

	// followees[i][j] is true iff node i listens to node j.
	followees := make([][]bool, numNodes)
	for i := range followees {
		followees[i] = make([]bool, numNodes)
		for j := range followees[i] {
			if i == j {
				continue
			}
			if rng.Float64() < scenario.PGraph {
				followees[i][j] = true
			}
		}
	}
	for i, node := range nodes {
		node.SetFollowees(followees[i])
	}

	// Seed the network with valid transaction ids and hand each node a
	// random share of them.
	validTxIDs := make(map[int64]struct{}, seededTransactions)
	for len(validTxIDs) < seededTransactions {
		validTxIDs[rng.Int63()] = struct{}{}
	}

	for _, node := range nodes {
		var pending []gossip.Transaction
		for txID := range validTxIDs {
			if rng.Float64() < scenario.PTxDistribution {
				pending = append(pending, gossip.Transaction{ID: txID})
			}
		}
		node.SetPendingTransaction(pending)
	}

	// Fixed per-round order: all sends, then all deliveries.
	for round := 0; round < scenario.NumRounds; round++ {
		proposals := make(map[int][]gossip.Candidate)

		for i, node := range nodes {
			for _, tx := range node.SendToFollowers() {
				if _, valid := validTxIDs[tx.ID]; !valid {
					continue
				}

				for j := 0; j < numNodes; j++ {
					if !followees[j][i] {
						continue
					}
					proposals[j] = append(proposals[j], gossip.Candidate{Tx: tx, Sender: i})
				}
			}
		}

		for i, node := range nodes {
			if candidates, exists := proposals[i]; exists {
				node.ReceiveFromFollowees(candidates)
			}
		}
	}

	// The read after the final round reveals each node's consensus set.
	cohorts := make(map[string][]int)
	for i, node := range nodes {
		key := consensusKey(node.SendToFollowers())
		cohorts[key] = append(cohorts[key], i)
	}

	var bestKey string
	for key, members := range cohorts {
		if len(members) > len(cohorts[bestKey]) {
			bestKey = key
		}
	}

	numTxs := 0
	if bestKey != "" {
		numTxs = len(strings.Split(bestKey, ";"))
	}

	log.Infow("consensus", "run", runID,
		"cohorts", len(cohorts),
		"largest_cohort", len(cohorts[bestKey]),
		"transactions", numTxs)

	return nil
}

// consensusKey folds a consensus set into a canonical string so agreeing
// nodes land in the same cohort.
func consensusKey(txs []gossip.Transaction) string {
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = strconv.FormatInt(tx.ID, 10)
	}

	return strings.Join(ids, ";")
}
