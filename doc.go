/*
Package until waits for observable values to satisfy conditions.

A wait subscribes to a Watchable value, checks a condition against the
current value and every later change, and settles a single-shot Future once
the condition holds or a timeout elapses. Subscriptions and timers are
released as soon as the wait settles, so waits can be created freely.

# Basic Usage

Hold state in a Ref and wait on it:

	ready := until.NewRef(false)

	go func() {
	    // ...
	    ready.Set(true)
	}()

	_, err := until.For[bool](ready).ToBeTruthy().Wait(ctx)

Every condition method returns a *Future. Wait blocks until it settles,
Done exposes a channel, and Result reports the outcome without blocking.

# Conditions

	until.For(v).ToMatch(func(n int) bool { return n > 10 })
	until.For(v).ToBe(3)                  // identity, or structural WithDeep
	until.For(v).ToBeSource(other)        // compare with another value
	until.For(v).ToBeTruthy()             // not nil, NaN or the zero value
	until.For(v).ToBeNull()               // nil pointer, map, slice, ...
	until.For(v).ToBeNaN()
	until.For(v).ToBeUndefined()          // the zero value
	until.For(v).Changed()                // next change, whatever the value
	until.For(v).ChangedTimes(3)          // third change from now
	until.ForSlice(s).ToContains(elem)

Not inverts the condition of the next call and returns a fresh Facade, so
one Facade can start both plain and negated waits:

	f := until.For(status)
	notIdle := f.Not().ToBe("idle")
	done := f.ToBe("done")

# Timeouts

	until.For(v).ToBe(1, until.WithTimeout(time.Second))

Without WithThrowOnTimeout a timeout settles the wait successfully with the
zero value. With it, the wait fails with an error matching ErrTimeout:

	_, err := until.For(v).ToBe(1,
	    until.WithTimeout(time.Second),
	    until.WithThrowOnTimeout(),
	).Wait(ctx)
	if errors.Is(err, until.ErrTimeout) {
	    // ...
	}

Timeout options can also be loaded from configuration with ParsePolicy and
applied with WithPolicy. Use WithClock and clockz.FakeClock in tests.

# Scopes

Waits created through ForContext are abandoned when the context is done:
their subscriptions and timers are released and their futures never settle.
Future.Abandon does the same for a single wait.

# Sources

Ref is the basic Watchable. Capacitor turns a byte Watcher, such as a
FileWatcher, into a Watchable of decoded and validated values. Extract
follows a stream chosen by another watched value and republishes its latest
emission.

# Observability

Waits, stream bridges and capacitors emit capitan signals (see signals.go)
and report to an optional MetricsProvider.
*/
package until
