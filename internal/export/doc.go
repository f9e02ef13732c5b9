// Package export writes biomass trajectories and food web drawings as SVG.
package export
