// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Row is the input interface the core consumes: a mapping from dimension
// name to an opaque value. Extra keys are ignored; missing keys are
// treated as missing values.
type Row map[string]Value

// OrderEval is the result of choosing a dimension order: the order itself,
// an overall estimated score, and diagnostics (per-dimension entropy and
// cardinality for the heuristic, or the best objective score and the
// number of evaluations for search).
type OrderEval struct {
	Order       []string
	Score       float64
	Diagnostics map[string]float64
}

// Fixed returns the caller-supplied order unchanged, after checking it is a
// permutation of the schema's dimension names.
func Fixed(schema *Schema, order []string) (OrderEval, error) {
	if err := schema.ValidatePermutation(order); err != nil {
		return OrderEval{}, err
	}
	return OrderEval{Order: append([]string(nil), order...), Diagnostics: map[string]float64{}}, nil
}

// Heuristic sorts dimensions ascending by H(d) + 0.05*C(d), where H is the
// empirical Shannon entropy of the dimension's raw labeled values and C is
// its number of distinct raw labels (the square root of that number for
// Numeric dimensions). Numeric values are not binned first: both terms are
// computed on the unbinned column. Placing low-entropy,
// low-cardinality dimensions earlier promotes prefix merging; the
// cardinality term is a tiebreak biased against high-branching early
// layers.
func Heuristic(rows []Row, schema *Schema) (OrderEval, error) {
	cols := schema.Names()
	type scored struct {
		score float64
		name  string
	}
	scores := make([]scored, 0, len(cols))
	diag := make(map[string]float64, 2*len(cols))
	for _, c := range cols {
		dim := schema.MustGet(c)
		counts := valueCounts(rows, c, dim)
		ent := entropy(counts)
		card := float64(len(counts))
		if dim.Type == Numeric {
			card = math.Sqrt(math.Max(card, 1.0))
		}
		sc := ent + 0.05*card
		scores = append(scores, scored{score: sc, name: c})
		diag["entropy:"+c] = ent
		diag["card:"+c] = card
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score < scores[j].score })
	order := make([]string, len(scores))
	total := 0.0
	for i, s := range scores {
		order[i] = s.name
		total += s.score
	}
	return OrderEval{Order: order, Score: total, Diagnostics: diag}, nil
}

// valueCounts tallies occurrences of each rendered label for dimension c
// across rows, applying the dimension's missing token to absent values.
// Numeric dimensions are not pre-binned here: the heuristic uses raw label
// cardinality as its proxy and computes entropy on the unbinned column.
func valueCounts(rows []Row, c string, dim Dimension) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		v, ok := r[c]
		if !ok || v.IsMissing() {
			counts[dim.missingToken()]++
			continue
		}
		counts[v.Label()]++
	}
	return counts
}

// entropy computes the empirical Shannon entropy (in bits) of a label
// frequency table.
func entropy(counts map[string]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// EvaluateOrder computes the prefix-distinct-sum objective for a candidate
// order: the sum, over every non-empty prefix of the order, of the number
// of distinct label tuples projected onto that prefix. It correlates with
// both trie size and arc count and is cheap to evaluate per candidate,
// which is why the randomized search strategy uses it as its default
// objective.
func EvaluateOrder(rows []Row, order []string, schema *Schema) (float64, error) {
	if err := schema.ValidatePermutation(order); err != nil {
		return 0, err
	}
	total := 0.0
	seen := make(map[string]struct{})
	for i := range order {
		prefix := order[:i+1]
		seen = distinctOnPrefix(rows, prefix, schema)
		total += float64(len(seen))
	}
	return total, nil
}

func distinctOnPrefix(rows []Row, prefix []string, schema *Schema) map[string]struct{} {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		key := ""
		for _, dimName := range prefix {
			dim := schema.MustGet(dimName)
			v, ok := r[dimName]
			if !ok || v.IsMissing() {
				key += dim.missingToken() + "\x1f"
				continue
			}
			key += v.Label() + "\x1f"
		}
		seen[key] = struct{}{}
	}
	return seen
}

// Search performs a budgeted randomized local search over dimension
// orders, starting from the Heuristic order and repeatedly proposing a
// random adjacent swap, accepting it only if the objective strictly
// improves. It stops when cfg.TimeBudget or cfg.MaxEvals is exhausted.
// Search with a zero budget (MaxEvals <= 0 and TimeBudget <= 0) returns the
// heuristic order unchanged.
//
// Independent candidate evaluations beyond the first are farmed out across
// a bounded worker pool via errgroup, as sanctioned by the concurrency
// model (parallelism must not leak into the observable contract: results
// are still combined deterministically by score, with ties broken by
// first-seen order).
func Search(ctx context.Context, rows []Row, schema *Schema, cfg OrderingConfig, log buildLogger) (OrderEval, error) {
	if cfg.MaxEvals <= 0 && cfg.TimeBudget <= 0 {
		return Heuristic(rows, schema)
	}
	if cfg.MaxEvals < 0 {
		return OrderEval{}, &OrderingError{Op: "Search", Err: fmt.Errorf("max_evals must be non-negative, got %d", cfg.MaxEvals)}
	}

	base, err := Heuristic(rows, schema)
	if err != nil {
		return OrderEval{}, err
	}
	objective := func(order []string) float64 {
		switch cfg.Objective {
		case Nodes, Arcs, NodesPlusArcs:
			return compileSizeObjective(rows, schema, order, cfg.Objective)
		default:
			sc, err := EvaluateOrder(rows, order, schema)
			if err != nil {
				return math.Inf(1)
			}
			return sc
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	best := append([]string(nil), base.Order...)
	bestScore := objective(best)
	evals := 1
	log.searchEval(evals, bestScore, true)

	deadline := time.Now().Add(cfg.TimeBudget)
	beam := cfg.BeamWidth
	if beam < 1 {
		beam = 1
	}

	for evals < cfg.MaxEvals {
		if len(best) < 2 {
			// No adjacent pair exists to swap; a single-dimension schema has
			// exactly one order, so the search has nothing left to explore.
			break
		}
		if cfg.TimeBudget > 0 && time.Now().After(deadline) {
			break
		}
		// Propose up to beam independent adjacent-swap candidates and
		// evaluate them concurrently; the search only ever accepts a
		// strict improvement over the running best, so fan-out cannot
		// change the result, only the wall-clock cost of finding it.
		batch := beam
		if remaining := cfg.MaxEvals - evals; batch > remaining {
			batch = remaining
		}
		candidates := make([][]string, batch)
		for k := 0; k < batch; k++ {
			candidates[k] = proposeAdjacentSwap(best, rng)
		}
		scores := make([]float64, batch)

		g, _ := errgroup.WithContext(ctx)
		for k := range candidates {
			k := k
			g.Go(func() error {
				scores[k] = safeObjective(objective, candidates[k])
				return nil
			})
		}
		_ = g.Wait()
		evals += batch

		for k, sc := range scores {
			if sc < bestScore {
				best, bestScore = candidates[k], sc
				log.searchEval(evals, sc, true)
			}
		}
	}

	diag := map[string]float64{
		string(objectiveName(cfg.Objective)): bestScore,
		"evals":                               float64(evals),
	}
	return OrderEval{Order: best, Score: bestScore, Diagnostics: diag}, nil
}

// proposeAdjacentSwap returns a copy of order with one randomly chosen
// adjacent pair transposed. Restricting proposals to adjacent
// transpositions, rather than an arbitrary pair, keeps the neighborhood
// small enough that repeated strict-improvement acceptance converges to a
// local optimum reachable by single-inversion steps from the heuristic
// order.
func proposeAdjacentSwap(order []string, rng *rand.Rand) []string {
	cand := append([]string(nil), order...)
	i := rng.Intn(len(cand) - 1)
	cand[i], cand[i+1] = cand[i+1], cand[i]
	return cand
}

// safeObjective evaluates objective(order), recovering from a panic inside
// an individual candidate evaluation and scoring it as infinitely bad so a
// single noisy candidate cannot crash the whole search, per spec.
func safeObjective(objective func([]string) float64, order []string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = math.Inf(1)
		}
	}()
	return objective(order)
}

func objectiveName(o Objective) string {
	switch o {
	case Nodes:
		return "nodes"
	case Arcs:
		return "arcs"
	case NodesPlusArcs:
		return "nodes_plus_arcs"
	default:
		return "prefix_distinct_sum"
	}
}

// compileSizeObjective performs a full trie-then-reduce compile for order
// and returns the requested size metric. Used only by the Nodes/Arcs/
// NodesPlusArcs objectives, which are inherently O(evals * compile); callers
// must bound evals/beam_width accordingly.
func compileSizeObjective(rows []Row, schema *Schema, order []string, objective Objective) float64 {
	sub, err := schema.Subset(order)
	if err != nil {
		return math.Inf(1)
	}
	nodes, root, terminalLayer, err := buildTrie(rows, sub, order, defaultMissingTokens(sub))
	if err != nil {
		return math.Inf(1)
	}
	nodes, root, err = reduceTrie(nodes, root, terminalLayer, nopLogger())
	if err != nil {
		return math.Inf(1)
	}
	nodeCount := len(nodes)
	arcCount := 0
	for _, n := range nodes {
		arcCount += len(n.Edges)
	}
	switch objective {
	case Nodes:
		return float64(nodeCount)
	case Arcs:
		return float64(arcCount)
	default:
		return float64(nodeCount + arcCount)
	}
}
