// Package simpl drives analytical global placement. Each outer iteration
// computes two bounds on the achievable wirelength:
//
//   - a lower bound from anchored quadratic placement: the net model
//     (package netmodel) is rebuilt and solved per axis (package cg) until
//     the wirelength series converges or oscillates
//   - an upper bound from look-ahead legalization: overfilled bins (package
//     gridbin) are spread by recursive bisection (package bisect) into an
//     overlap-free-enough configuration
//
// The legalized positions anchor the next quadratic solve with a stiffness
// that grows every iteration, so the two bounds close on each other. Two
// stopping rules are provided: the SimPL gap-ratio criterion and the POLAR
// ratio criterion.
//
// X- and Y-axis systems share no state and are built and solved on separate
// goroutines when more than one thread is configured; results are identical
// to the single-threaded run.
package simpl
