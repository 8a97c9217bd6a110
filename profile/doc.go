// Package profile manages researcher profiles and their source documents.
//
// A profile's id is derived deterministically from its name, so repeated
// CreateOrUpdate calls for the same researcher converge on one record.
// Every mutation (interests, documents, URLs) regenerates the aggregate
// profile embedding; matching requires that embedding to exist.
package profile
