// Package api is the client of the RSS aggregation backend.
//
// # Overview
//
// [Client] wraps the backend's REST endpoints used by the admin dashboard:
//
//   - Sources: [Client.ListSources], [Client.GetSource], [Client.IngestSources]
//   - Feeds: [Client.ListFeeds], [Client.SyncFeeds], [Client.CheckFeeds],
//     [Client.SetFeedEnabled], [Client.SetCompanyEnabled]
//   - [Client.Health] and [Client.IconURL]
//
// # Errors
//
// Non-2xx responses become an [*APIError] carrying the status, the message
// found in the payload and the payload itself. The APIError is wrapped in a
// coded error from pkg/errors, so callers can switch on the code and the
// server can pick a status with errors.HTTPStatus.
//
// # Caching and Retries
//
// GET requests are retried on network failures and 5xx responses and may be
// cached (see [WithCache]). Mutating requests are sent exactly once.
package api
