// Package remote talks to the remote quote collection and ships a small
// stand-in server for it.
//
// # Overview
//
// The remote side is a JSON collection at <base>/posts, shaped like the
// public jsonplaceholder service:
//
//   - GET  /posts?_limit=N: newest snapshot, at most N records
//   - HEAD /posts?_limit=1: reachability check
//   - POST /posts: create a record, the response carries the assigned id
//   - GET  /posts/{id}: single record (simulated server only)
//
// Records only have a title on the public service. Text and category are
// optional extras that the simulated server and quoter's own pushes fill in;
// QuoteText prefers text and falls back to title.
//
// # Client
//
//	client, err := remote.NewClient(cfg.RemoteURL, remote.WithLogger(logger))
//	records, err := client.FetchRecords(ctx, 10)
//	created, err := client.PushQuote(ctx, q)
//
// Every request uses the caller's context, a 5 second timeout, the
// quoter/0.1 user agent and a fresh X-Request-ID. Errors are wrapped with
// what failed:
//
//   - "execute request: dial tcp: connection refused"
//   - "api /posts returned status 503"
//   - "decode response: unexpected EOF"
//
// A base URL without a scheme gets http://. Any path prefix on the base URL
// is kept, so "http://host/api" resolves /posts to /api/posts.
//
// # Server
//
// Server is an in-memory chi router serving the routes above. It backs the
// serve-remote command and the sync tests. SetOffline makes every route
// answer 503 so offline handling can be exercised end to end.
//
// The client is safe for concurrent use; the server guards its records with
// a mutex.
package remote
