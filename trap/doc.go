// Package trap defines the closed catalogue of abstract failure reasons a guest
// can trap with, and their stable message template identifiers.
//
// Every Reason maps to exactly one MessageTemplate. Template values are part of
// the wire contract between builtins and the error-raising runtime service and
// must not be renumbered.
package trap
