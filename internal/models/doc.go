// Package models provides the population-genetic recurrences stepped by the
// [sim.Simulator].
//
//   - [Drift]: Gaussian random drift of one allele frequency
//   - [WrightFisher]: binomial resampling of 2N gene copies
//   - [Linkage]: decay of linkage disequilibrium between two loci
//   - [Inbreeding]: regular systems of close inbreeding (selfing, full sibs,
//     half sibs, double first cousins) and the ideal population of size N
//
// Every model is stateless; all randomness comes from the generator passed
// to Step, so models are safe to share across an [sim.Ensemble].
package models
