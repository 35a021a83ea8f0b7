// Package graph implements the associative memory graph: a weighted,
// undirected structure over memory ids whose edges strengthen via a
// Hebbian rule on co-activation, potentiate under long-term
// potentiation (LTP) once used enough, decay exponentially with the
// time elapsed since their last activation,
// and diffuse activation outward during recall via spreading
// activation.
package graph
