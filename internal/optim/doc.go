// Package optim sweeps configuration parameters over a grid, running an
// ensemble at every point and averaging the run summaries.
package optim
