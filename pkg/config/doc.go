// Package config defines Strata's YAML configuration: where policy
// documents come from, how they are watched, and how logging, metrics, and
// the query audit trail behave.
//
// Loading follows a fixed sequence: parse YAML, apply defaults, validate.
// An invalid configuration fails loading outright; there are no silent
// fallbacks for bad values.
package config
