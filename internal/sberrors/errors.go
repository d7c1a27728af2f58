// Package sberrors defines the sentinel error kinds shared by every SBM
// inference package, following the same policy as lvlath/builder's
// errors.go: package-level sentinels only, checked via errors.Is, with a
// small Wrapf helper to attach method context via %w at the call site.
package sberrors

import (
	"errors"
	"fmt"
)

// ConstraintBarrier is returned when a move is disallowed by bclabel/pclabel
// constraints or by a coupled state's own barrier. move_vertex surfaces it;
// virtual_move swallows it and returns +Inf instead of failing.
var ConstraintBarrier = errors.New("sbm: move rejected by constraint barrier")

// NotSupported marks a requested computation that the current model variant
// cannot perform, e.g. dense entropy for a degree-corrected or overlapping
// model.
var NotSupported = errors.New("sbm: operation not supported by this model variant")

// ShapeMismatch is returned when batched inputs disagree in length, e.g.
// add_vertices(vs, rs) with len(vs) != len(rs).
var ShapeMismatch = errors.New("sbm: shape mismatch between batched arguments")

// InvariantFailure is only raised by check_edge_counts / check_node_counts.
// In release builds callers get a bool instead; debug builds may wrap this
// into a panic via internal/obslog's assertion helper.
var InvariantFailure = errors.New("sbm: invariant check failed")

// Wrapf attaches method context to an error without altering errors.Is
// matching against the wrapped sentinel: wrapf("BlockState.ModifyVertex", err).
func Wrapf(method string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", method, err)
}

// Wrapff is like Wrapf but takes a format string and args for extra context,
// e.g. Wrapff("BlockState.ModifyVertex", err, "vertex=%s block=%d", v, r).
func Wrapff(method string, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", method, fmt.Sprintf(format, args...), err)
}
