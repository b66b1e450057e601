// Package client is the boundary between the gophbucket client and the
// bucket service.
//
// # Overview
//
// The package provides:
//  1. The Client interface: one method per backend endpoint (OAuth callback,
//     token validation/refresh/logout, bucket protection and password
//     exchange, listings, admins, lifecycle, download, and the
//     prepare/PUT/confirm upload phases).
//  2. HTTPClient, the JSON/HTTP implementation. Each request carries an
//     X-Request-ID; bearer headers are set through oauth2.Token.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite token store and applies embedded goose migrations.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError carrying the server message.
// APIError matches ErrNotFound (404) and ErrUnauthorized (401, 403) under
// errors.Is. Transport failures wrap ErrUnavailable.
package client
