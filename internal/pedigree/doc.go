// Package pedigree builds and reads pedigrees and computes coancestry on them.
//
// A [Pedigree] is a set of [Individual] records linked to their sire and dam.
// Records are ordered parents-before-offspring by a topological sort of the
// parent→offspring graph, after which [Pedigree.Kinship] fills the additive
// relationship matrix with the tabular method:
//
//	a(i,i) = 1 + a(s,d)/2
//	a(i,j) = (a(j,s) + a(j,d))/2
//
// The coancestry of two individuals is half their relationship and the
// inbreeding coefficient of an individual is the coancestry of its parents.
//
// Synthetic lines ([FullSibLine], [SelfingLine], [RandomMating]) reproduce
// the regular mating systems so pedigree coancestry can be set against the
// closed-form recurrences. [Pedigree.Rebase] moves the base population to a
// later generation.
//
// Pedigrees are read from CSV ([ReadCSV]) or spreadsheets ([ReadXLSX]) with
// columns id, sire, dam and optionally generation and sex.
package pedigree
