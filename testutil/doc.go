// Package testutil provides testing utilities for recgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic random record sets and ordinal workloads.
//
// # Random Records
//
//	rng := testutil.NewRNG(seed)
//	fixed := rng.FixedRecords(1000, 16)       // 1000 records of 16 bytes
//	variable := rng.VariableRecords(1000, 64) // uint16 length prefix + payload
//
// # Workloads
//
//	ords := rng.Ordinals(10000, count)      // uniform
//	hot := rng.ZipfOrdinals(10000, count, 1.2) // skewed towards low ordinals
package testutil
