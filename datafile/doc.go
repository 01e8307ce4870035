// Package datafile loads the documents a template is rendered against.
// YAML (.yaml, .yml) and JSON (.json) files are decoded with goccy's codecs
// and converted to value.Value; any other file is read as a workspace status
// file of "KEY VALUE" lines. LoadAll expands doublestar glob patterns and
// merges the resulting maps in order, later documents winning.
package datafile
