// Package params expands `%name%` parameter placeholders and models
// parameters whose values are only known when the generated container runs.
package params
