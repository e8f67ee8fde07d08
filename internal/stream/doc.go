// Package stream turns the push-style metrics feed into a steady, per-widget
// sampling signal.
//
// # Key Components
//
//	Session     - Owns one Connection and one FeedCache and drives a Transport.
//	              Independent sessions share nothing, so tests can run many.
//	Connection  - Lifecycle state machine for the feed link
//	              (initializing, connecting, connected, disconnected, error).
//	FeedCache   - Latest full snapshot of every metric plus its arrival time.
//	Sampler     - One ticker per metric. Each tick reads the cache and, only
//	              while connected, forwards the value to the subscriber.
//	WSTransport - Websocket client with bounded, backed-off reconnection.
//
// # Data Flow
//
//  1. The transport receives a snapshot frame roughly once per second
//  2. Session overwrites the FeedCache with the snapshot
//  3. Each Sampler ticker fires on its own interval and reads the cache
//  4. Values are emitted to the widget callback; failures go to the
//     optional error handler and the next tick retries
//
// Consumers poll Connection.Status for UI state; there is no push channel
// for lifecycle changes.
package stream
