// Package taskchain implements the sequenced, fail-stop request-building
// step described in spec.md §4.5: a TaskChain accumulates logs and
// update-tree fragments as it runs, short-circuiting on failure while
// preserving whatever was accumulated so far.
//
// The source's phantom type parameter (spec.md §9 "Type-level phantom
// context") tracked at compile time which Context fields a chain step
// required. Go generics cannot express row-typed "context so far"
// witnesses the way the source language can, so this package takes
// option (b) from §9: it declares ConfigurationIncomplete, the error a
// step returns when a required field is still unset. The package has no
// constructor that checks which Context fields are populated. The error
// type mirrors dendrite's own `*Verify(*config.ConfigErrors)` pattern of
// collecting a concrete list of "what's missing" rather than leaning on
// the type system.
package taskchain

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/update"
	"github.com/sirupsen/logrus"
)

// ConfigurationIncomplete is returned when a TaskChain step runs before
// its required context fields are populated (spec.md §9).
type ConfigurationIncomplete struct {
	MissingFields []string
}

func (e ConfigurationIncomplete) Error() string {
	msg := "task chain: configuration incomplete, missing:"
	for _, f := range e.MissingFields {
		msg += " " + f
	}
	return msg
}

// Result is the outcome of running a TaskChain to completion: either a
// failure carrying whatever logs/updates accumulated before the error,
// or a success carrying the accumulated updates and logs.
type Result[Ctx any] struct {
	Err     error
	Logs    []codec.Log
	Updates []update.EnvelopeUpdate
	Context Ctx
	Ok      bool
}

// Step is one TaskChain link: given ctx, produce a Result.
type Step[Ctx any] func(ctx Ctx) Result[Ctx]

// Succeed returns a step that always succeeds with no updates or logs.
func Succeed[Ctx any]() Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		return Result[Ctx]{Ok: true, Context: ctx}
	}
}

// Fail returns a step that always fails with err.
func Fail[Ctx any](err error) Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		return Result[Ctx]{Err: err, Context: ctx}
	}
}

// AndThen runs first, and if it succeeds, runs next with the enlarged
// context, concatenating logs and updates in order (spec.md §4.5
// "andThen: fail-stop sequencing, preserving accumulated logs/updates").
func AndThen[Ctx any](first Step[Ctx], next Step[Ctx]) Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		r1 := first(ctx)
		if !r1.Ok {
			logrus.WithError(r1.Err).Debug("taskchain: andThen short-circuited")
			return r1
		}
		r2 := next(r1.Context)
		r2.Logs = append(append([]codec.Log(nil), r1.Logs...), r2.Logs...)
		r2.Updates = append(append([]update.EnvelopeUpdate(nil), r1.Updates...), r2.Updates...)
		return r2
	}
}

// OnError runs first, and if it fails, reroutes into recover (spec.md
// §4.5 "onError: catch and reroute").
func OnError[Ctx any](first Step[Ctx], recover func(error, Ctx) Step[Ctx]) Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		r1 := first(ctx)
		if r1.Ok {
			return r1
		}
		r2 := recover(r1.Err, r1.Context)(r1.Context)
		r2.Logs = append(append([]codec.Log(nil), r1.Logs...), r2.Logs...)
		r2.Updates = append(append([]update.EnvelopeUpdate(nil), r1.Updates...), r2.Updates...)
		return r2
	}
}

// CatchWith runs first, and if it fails, substitutes a fixed success
// value rather than propagating the error (spec.md §4.5 "catchWith").
func CatchWith[Ctx any](first Step[Ctx], recoverTo Ctx) Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		r1 := first(ctx)
		if r1.Ok {
			return r1
		}
		return Result[Ctx]{Ok: true, Context: recoverTo, Logs: r1.Logs, Updates: r1.Updates}
	}
}

// Maybe runs step but discards any failure, treating it as a no-op
// success that preserves ctx (spec.md §4.5 "maybe: run-but-ignore-
// failure").
func Maybe[Ctx any](step Step[Ctx]) Step[Ctx] {
	return func(ctx Ctx) Result[Ctx] {
		r := step(ctx)
		if r.Ok {
			return r
		}
		return Result[Ctx]{Ok: true, Context: ctx, Logs: r.Logs}
	}
}

// Effect is the externally-scheduled side effect a never-failing chain
// is dropped into by ToTask (spec.md §4.5 "toTask drops the
// never-failing chain into an externally-scheduled effect"); this
// package does not execute it, only carries it for the runner described
// as a black box in spec.md §1.
type Effect[Ctx any] struct {
	Updates []update.EnvelopeUpdate
	Logs    []codec.Log
	Context Ctx
}

// ToTask converts a Result known never to fail into an Effect. Callers
// that cannot prove this statically should check Result.Ok first.
func ToTask[Ctx any](r Result[Ctx]) Effect[Ctx] {
	if !r.Ok {
		logrus.WithError(r.Err).Warn("taskchain: toTask called on a failed result")
	}
	return Effect[Ctx]{Updates: r.Updates, Logs: r.Logs, Context: r.Context}
}
