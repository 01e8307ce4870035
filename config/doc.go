// Package config loads the YAML file describing one template expansion:
// which template to read, where to write, which data documents and
// variables to render against and which format overrides to seed. Relative
// paths are resolved against the directory holding the file.
package config
