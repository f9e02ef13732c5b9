// Package viz renders food web runs in the terminal.
//
// [PlotBiomass] draws trajectories with asciigraph, [RenderWeb] draws the
// network on a braille [Canvas], and [LiveModel] is a Bubble Tea model that
// follows a run through a [sim.Observer] built by [Observer].
//
// # Key Bindings
//
//	q - quit
//	t - cycle colour themes
//	w - toggle the food web panel
//	? - show help
package viz
