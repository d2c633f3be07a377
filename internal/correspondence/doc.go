// Package correspondence remembers, across sessions, which source node
// corresponds to which target thing.
//
// A Correspondence links an internal target id to an external identifier
// and the direction the link was created for. The Store indexes the
// records of one mapping configuration by (internal id, identifier,
// direction) so that repeated synchronization runs update existing records
// instead of appending duplicates.
//
// The external half of a record is a flat JSON object with string fields
// only:
//
//	{"identifier":"Root/Wheel","identifierType":"string","direction":"SourceToTarget"}
//
// Identifiers are compared as opaque tokens: a string identifier is its own
// token, an id identifier is its canonical text form. A blob that cannot be
// decoded degrades to a record carrying the raw text as identifier and
// DirectionInvalid, which every directional lookup skips.
//
// A Store is owned by one synchronization session and is not safe for
// concurrent mutation. Call Refresh after committing a transaction that
// changed the stored configuration.
package correspondence
