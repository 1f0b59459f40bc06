// Package fsutil contains small filesystem helpers shared by the workspace tools.
package fsutil
