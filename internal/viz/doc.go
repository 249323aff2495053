// Package viz holds terminal styling and the live progress view used by
// the hybridsim CLI.
package viz
