// Package loader implements config.Loader for files on disk. HCL files are
// decoded through the hcl_adapter package, YAML and JSON files through
// yaml.v3. A top-level `includes` list pulls in further files relative to
// the including one.
package loader
