/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version carries build information.
package version

import "runtime/debug"

// Version is set at build time via ldflags:
//
//	-X github.com/SICQR/hotmess/internal/version.Version=X.Y.Z
var Version = "0.4.0"

// Commit returns the VCS revision embedded by the Go toolchain, if any.
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}

// String renders the version with the commit when known.
func String() string {
	if c := Commit(); c != "" {
		return Version + " (" + c + ")"
	}
	return Version
}
