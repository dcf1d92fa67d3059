// Package registry provides the ordered, name-keyed store behind the
// compiler's extension system.
//
// Entries keep the order in which they were registered. Names are unique in a
// case-insensitive manner, so "Cache" and "cache" cannot both be used as
// configuration sections. Each entry also carries a Stage marker; callers that
// need the load order (first-phase entries, then normal ones, then late ones)
// ask for Ordered, which is a stable sort on that marker and never rewrites
// the registration order itself.
package registry
