package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorindex/pkg/core"
	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

type benchOptions struct {
	N              int
	Dim            int
	Queries        int
	K              int
	M              int
	EfConstruction int
	EfSearch       int
	Seed           int64
	Metric         string
	Precision      string
}

type benchReport struct {
	Vectors      int           `json:"vectors"`
	Dimension    int           `json:"dimension"`
	Queries      int           `json:"queries"`
	K            int           `json:"k"`
	Metric       string        `json:"metric"`
	Backend      string        `json:"distance_backend"`
	BuildTime    time.Duration `json:"build_time_ns"`
	InsertRate   float64       `json:"inserts_per_second"`
	Recall       float64       `json:"recall"`
	MeanLatency  time.Duration `json:"mean_latency_ns"`
	P99Latency   time.Duration `json:"p99_latency_ns"`
	ExactLatency time.Duration `json:"exact_mean_latency_ns"`
	TopLevel     int           `json:"top_level"`
}

func newBenchCmd(_ *globalFlags) *cobra.Command {
	opts := benchOptions{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure recall@k and latency on random unit vectors",
		Long: `Build an index over random unit vectors, run random queries, and
compare the answers with an exact scan.

Examples:
  kektorindex bench
  kektorindex bench --n 50000 --dim 384 --ef-search 64`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := runBench(opts)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, asJSON)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.N, "n", 10000, "Number of vectors to index")
	f.IntVar(&opts.Dim, "dim", 128, "Vector dimension")
	f.IntVar(&opts.Queries, "queries", 100, "Number of queries")
	f.IntVar(&opts.K, "k", 10, "Results per query")
	f.IntVar(&opts.M, "m", 16, "Max neighbours per node")
	f.IntVar(&opts.EfConstruction, "ef-construction", 200, "Candidate list size while building")
	f.IntVar(&opts.EfSearch, "ef-search", 100, "Candidate list size while searching")
	f.Int64Var(&opts.Seed, "seed", 42, "Random seed for data and levels")
	f.StringVar(&opts.Metric, "metric", string(distance.Cosine), "Similarity metric")
	f.StringVar(&opts.Precision, "precision", string(distance.Float32), "Vector storage precision (float32, float16)")
	f.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func runBench(o benchOptions) (benchReport, error) {
	if o.N <= 0 || o.Dim <= 0 || o.Queries <= 0 || o.K <= 0 {
		return benchReport{}, fmt.Errorf("bench: n, dim, queries and k must be positive")
	}
	metric, err := distance.ParseMetric(o.Metric)
	if err != nil {
		return benchReport{}, err
	}
	precision, err := distance.ParsePrecision(o.Precision)
	if err != nil {
		return benchReport{}, err
	}

	cfg := hnsw.DefaultConfig()
	cfg.Dimension = o.Dim
	cfg.M = o.M
	cfg.EfConstruction = o.EfConstruction
	cfg.EfSearch = o.EfSearch
	cfg.Metric = metric
	cfg.Precision = precision
	cfg.Seed = o.Seed

	graph, err := hnsw.New(cfg)
	if err != nil {
		return benchReport{}, err
	}
	exact, err := core.NewBruteForce(metric, o.Dim)
	if err != nil {
		return benchReport{}, err
	}

	r := rand.New(rand.NewSource(o.Seed))
	recs := make([]types.Record, o.N)
	for i := range recs {
		recs[i] = types.Record{ID: fmt.Sprintf("v%07d", i), Embedding: unitVector(r, o.Dim)}
	}

	start := time.Now()
	for _, rec := range recs {
		if err := graph.Add(rec); err != nil {
			return benchReport{}, err
		}
	}
	build := time.Since(start)
	for _, rec := range recs {
		if err := exact.Add(rec); err != nil {
			return benchReport{}, err
		}
	}

	latencies := make([]time.Duration, o.Queries)
	var exactTotal time.Duration
	hits, total := 0, 0
	for q := range latencies {
		query := unitVector(r, o.Dim)

		t0 := time.Now()
		got, err := graph.Search(query, o.K, 0, nil)
		latencies[q] = time.Since(t0)
		if err != nil {
			return benchReport{}, err
		}

		t1 := time.Now()
		want, err := exact.Search(query, o.K, 0, nil)
		exactTotal += time.Since(t1)
		if err != nil {
			return benchReport{}, err
		}

		truth := make(map[string]struct{}, len(want))
		for _, w := range want {
			truth[w.ID] = struct{}{}
		}
		for _, g := range got {
			if _, ok := truth[g.ID]; ok {
				hits++
			}
		}
		total += len(want)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	p99 := latencies[min(len(latencies)-1, int(math.Ceil(0.99*float64(len(latencies))))-1)]

	return benchReport{
		Vectors:      o.N,
		Dimension:    o.Dim,
		Queries:      o.Queries,
		K:            o.K,
		Metric:       string(metric),
		Backend:      distance.Backend(),
		BuildTime:    build,
		InsertRate:   float64(o.N) / build.Seconds(),
		Recall:       float64(hits) / float64(total),
		MeanLatency:  sum / time.Duration(len(latencies)),
		P99Latency:   p99,
		ExactLatency: exactTotal / time.Duration(o.Queries),
		TopLevel:     graph.Stats().TopLevel,
	}, nil
}

func unitVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	var norm float64
	for i := range v {
		v[i] = float32(r.NormFloat64())
		norm += float64(v[i]) * float64(v[i])
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func writeReport(w io.Writer, r benchReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err := fmt.Fprintf(w, `vectors      %d x %d (%s, kernels: %s)
build        %s (%.0f inserts/s, top level %d)
recall@%-5d %.4f over %d queries
latency      mean %s, p99 %s (exact scan mean %s)
`,
		r.Vectors, r.Dimension, r.Metric, r.Backend,
		r.BuildTime.Round(time.Millisecond), r.InsertRate, r.TopLevel,
		r.K, r.Recall, r.Queries,
		r.MeanLatency, r.P99Latency, r.ExactLatency)
	return err
}
