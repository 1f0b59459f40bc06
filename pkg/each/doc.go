// Package each runs a command inside every package of the workspace.
//
// Packages are processed one after another in the order they are passed in. Every invocation gets
// the package directory as its working directory; the working directory of the calling process is
// never touched. A failing package doesn't stop the remaining ones unless Options.FailFast is set.
package each
