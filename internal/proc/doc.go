// Package proc runs external commands with captured output.
//
// ExecRunner wires the child to three os.Pipe pairs, starts one drain per
// output stream before any input is written, then writes and closes stdin.
// A child that fills its stdout pipe while stdin is still being written
// therefore cannot deadlock the caller.
//
// Runs are not cancellable and have no timeout: a hung child blocks Run.
package proc
