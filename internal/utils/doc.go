// Package utils holds small helpers shared by the outparse packages: JSON
// rendering for command output, line splitting and truncation for log
// excerpts, and a stopwatch for parse timings.
package utils
