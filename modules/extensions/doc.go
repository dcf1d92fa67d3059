// Package extensions provides the meta extension that registers further
// extensions named in the configuration.
//
// The section is either a map of extension name to kind, or a list of
// kinds registered anonymously:
//
//	extensions {
//	  inject = "inject"
//	}
package extensions
