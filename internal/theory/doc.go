// Package theory holds the closed-form expectations the simulations are
// plotted against: drift variance and heterozygosity decay, the decay of
// linkage disequilibrium, and the change of base population for inbreeding
// coefficients.
package theory
