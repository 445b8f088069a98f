// Package logs reads the CaptionTrans log file for `captiontrans logs`.
//
// Last returns the trailing lines with a resume offset, and Follow polls from
// that offset until the context ends, starting over when the file shrinks.
package logs
