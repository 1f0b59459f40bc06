// Package shell runs commands through the mvdan.cc/sh interpreter.
// Commands never change the working directory of the calling process; every runner gets its own
// directory and environment, which keeps invocations for different packages independent of each other.
package shell
