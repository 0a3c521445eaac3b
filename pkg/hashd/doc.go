// Package hashd provides an embeddable digest server.
//
// Clients connect over TCP, name a hash algorithm, declare a number of files
// and send each file as a length-prefixed payload. The server answers each
// file with its lowercase hex digest. See package wire for the framing.
//
// # Basic Usage
//
//	cfg := hashd.DefaultConfig()
//	cfg.Port = 2345
//
//	srv, err := hashd.New(cfg, hashd.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := srv.Start(ctx); err != nil {
//	    return err // bind failures surface here
//	}
//	defer srv.Stop()
//
// # One Client at a Time
//
// Connections are served strictly in order: the next connection is not
// accepted until the current session has closed. Later clients wait in the
// kernel accept backlog.
//
// With the default ReadTimeout of zero, a client that connects and then
// goes silent holds the server indefinitely and every other client waits
// behind it. Set [Config.ReadTimeout] on any server reachable by untrusted
// peers.
//
// # Reloading
//
// [Server.Reload] swaps the session settings (timeouts, chunk size,
// extended algorithms). The new values apply from the next accepted
// connection; the session in progress keeps the values it started with.
// The plugins/configwatcher package calls Reload when the config file
// changes.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for no-op
// defaults) and pass it with [WithEventHandler]. Events are delivered
// synchronously from the accept goroutine and must return quickly.
//
// # Lifecycle States
//
// A Server is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Server.Status] to query it.
package hashd
