// Package server serves a single static HTML file over HTTP.
//
// The file is read once when the Server is created and the same bytes are
// returned for every request to "/", so edits to the file need a restart.
package server
