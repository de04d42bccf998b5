// Package settings holds the init-once option registry passed to
// driver.New and, through walker.Context.Settings, to every walk: the two optimizer switches the core consumes
// (OPT_DISABLE_ASSERTS, OPT_ALGEBRA) and the surface language version
// the expression trees being lowered were type-checked against.
//
// Constructed once by the driver/CLI, per the design note that no
// process-global mutable state exists except this initial registry.
package settings

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Registry is the immutable set of options in effect for one
// compilation run.
type Registry struct {
	disableAsserts bool
	algebra        bool
	langVersion    string
}

// New validates langVersion against semver (must be a valid "vX.Y.Z"
// or "vX.Y" string) and returns a populated Registry, or an error if
// langVersion is malformed.
func New(disableAsserts, algebra bool, langVersion string) (*Registry, error) {
	if !semver.IsValid(langVersion) {
		return nil, fmt.Errorf("settings: %q is not a valid semantic version", langVersion)
	}
	return &Registry{disableAsserts: disableAsserts, algebra: algebra, langVersion: langVersion}, nil
}

// DisableAsserts reports OPT_DISABLE_ASSERTS: assert-variant foreign
// calls are elided by the walker when true.
func (r *Registry) DisableAsserts() bool { return r.disableAsserts }

// Algebra reports OPT_ALGEBRA: algebraic ResultVal inference for
// integer PLUS/MINUS is only attempted by Builtin.GetResults when true.
func (r *Registry) Algebra() bool { return r.algebra }

// LangVersion returns the surface language version expression trees
// were checked against.
func (r *Registry) LangVersion() string { return r.langVersion }

// CompatibleMajor reports whether tree was type-checked under a
// version sharing this registry's major version component. The walker
// does not call it and does not check a tree's version.
func (r *Registry) CompatibleMajor(treeVersion string) bool {
	if !semver.IsValid(treeVersion) {
		return false
	}
	return semver.Major(r.langVersion) == semver.Major(treeVersion)
}
