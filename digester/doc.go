// Package digester computes SHA256 digests of rendered text
// and of files on disk, so that an output whose content is
// already up to date can be left untouched.
package digester
