// Package switcher runs the clock, listener, flipper and supervisor loops as
// one supervised group.
//
// All four loops share a context derived from the caller's. When any loop
// returns, for any reason, the others are cancelled and Run waits for all
// of them before closing the mailboxes. The first error wins; a requested
// Shutdown is reported as a clean stop.
//
//	sw, err := switcher.New(switcher.Options{...})
//	if err != nil {
//	    return err
//	}
//	return sw.Run(ctx)
package switcher
