// Package utils provides input validation shared by the HTTP boundary.
//
// Validators reject malformed scopes, container identifiers, and remote
// URLs before they reach the registry or the loader.
package utils
