// Package sales provides the core types of the synthetic sales workload generator.
//
// It contains the reference data model (products, salesmen, stores), the synthetic and persisted
// sale records, the sentinel errors shared by all subpackages, and the Transaction Synthesizer
// which turns a reference snapshot plus a random source into one synthetic sale.
//
// The synthesizer is a pure function of its inputs. The random source is always injected,
// so tests can supply deterministic sequences and hit the status thresholds exactly:
//
//	rng := rand.New(rand.NewPCG(seed1, seed2))
//	sale, err := sales.Synthesize(snapshot.Products, snapshot.Salesmen, snapshot.Stores, rng)
//
// Infrastructure lives in subpackages:
//   - storage: reference data queries and the insert-with-return persistence sink
//   - notification: the fire-and-forget notification relay
//   - generator: the generation scheduler (initial burst and periodic batches)
//   - promadapters: a Prometheus implementation of MetricsCollector
package sales
