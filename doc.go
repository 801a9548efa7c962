// Package poolshell maintains a warm pool of long-lived, interactive
// child processes and dispatches client-supplied command sequences to
// them over their standard input, output and error streams.
//
// It is aimed at workloads where spawning a fresh child per request is
// too expensive (interpreters, model servers, external engines) but
// where each child can be scripted through a line-oriented protocol
// the client itself understands. The pool never parses that protocol;
// clients supply completion predicates that decide when a command's
// response is finished.
package poolshell
