// Package apiclient is the HTTP client for the hub REST API.
//
// A [Client] wraps a resty transport with two ordered middleware chains.
// Before each request the stored bearer token (if any) is attached. After
// each exchange the outcome is classified:
//
//   - a non-2xx response becomes an [*APIError] carrying status, code and body;
//   - a request that got no response (timeout, reset, DNS) becomes an
//     [*APIError] with Status 0 and [NetworkErrorMessage];
//   - anything else (bad URL, failing middleware) is returned unchanged.
//
// Responses with a status in [Config.UnauthorizedStatuses] also trigger
// [Config.OnUnauthorized] in a detached goroutine. Hook errors are logged,
// never returned.
//
// Every verb accepts an optional [Schema]; a body that fails it yields a
// [*ValidationError] and the output value is left untouched.
package apiclient
