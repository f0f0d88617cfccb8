// Package auth provides the API-key middleware guarding the REST API.
// When auth mode is "none" or no key is configured, the middleware is a
// pass-through.
package auth
