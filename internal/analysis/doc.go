// Package analysis turns simulation output into tables.
//
//   - [Summarise]: per-generation statistics across replicate drift lines
//   - [DriftTable]: observed variance and heterozygosity against expectation
//   - [LinkageTable]: D, D' and r² against the geometric decay of D
//   - [InbreedingTable]: recurrence F next to pedigree coancestry
//   - [BaseTable]: inbreeding relative to an old and a new base population
//
// A [Table] is a plain grid of columns and float rows that the CLI prints,
// plots and writes to CSV.
package analysis
