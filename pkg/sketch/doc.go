// Package sketch provides the mutators of a drawing session: draw, drawEnd and clear.
//
// Mutators never modify their prior state, so states resolved from a provenance
// graph can be shared safely between nodes.
package sketch
