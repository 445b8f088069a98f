// Package upload streams an incoming media file to a private temporary file
// while enforcing the extension allow-list and the size ceiling.
//
// Store never leaves a partial file behind: every failure path removes the
// temp file before returning. On success the caller owns the Artifact and must
// call Remove once it is done with it.
package upload
