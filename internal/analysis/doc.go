// Package analysis summarizes recorded runs.
//
//   - [Summarize]: population, energy and contact statistics of a run
//   - [PowerSpectrum] and [DominantPeriod]: periodicity of a recorded series
//   - [VelocityPortrait]: velocity-space scatter of a snapshot
//   - [Sweep]: a metric measured across a range of one parameter
//
// Text renderers ([ScatterToASCII], [SweepToASCII]) draw results for the CLI.
package analysis
