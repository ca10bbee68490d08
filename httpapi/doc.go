// Package httpapi exposes the context builders over HTTP.
//
// Context endpoints always answer 200 with text/plain: a caller without a
// valid bearer token gets the fallback string, exactly as an in-process caller
// without a session would. The cache endpoints are for operators and require
// the admin role.
package httpapi
