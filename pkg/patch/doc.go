// Package patch parses unified-diff documents and applies them to text
// files, writing each result to a numbered sibling of the original
// (app.py becomes app.001.py) so source files are never overwritten.
//
// The package detects and preserves the dominant line ending of each
// target file, tolerates context drift by warning instead of aborting,
// and exposes both filesystem and in-memory appliers so callers can
// embed the engine without touching disk.
package patch
