// Package compiler drives the compilation of configuration into a
// generated dependency injection container.
//
// A Compiler owns an ordered registry of extensions. Compile runs three
// stages: ProcessExtensions validates each extension's section and lets it
// load its configuration, ProcessServices feeds the services section to the
// service graph, and GenerateCode produces the container source, giving
// every extension a chance to shape it.
//
// Extensions marked Meta run first and in isolation; they may register
// further extensions and rewrite other sections. Extensions marked Late load
// their configuration after every other extension.
package compiler
