// Package mapping provides the persisted schema of mapping configurations,
// together with YAML parsing and structural validation.
//
// A mapping configuration is the named container of every correspondence
// record of one synchronization setup. Each record links an internal target
// thing id to an external identifier. The external half is stored as a small
// flat JSON blob whose layout belongs to the correspondence package; this
// package treats it as opaque text.
//
// # Schema Overview
//
// Configurations are stored in files of the following structure:
//
//	version: "1"
//	configurations:
//	  - id: 2c5a0b9e-8d0c-4bd4-a7c3-1f6e0b0a7d11
//	    name: satellite
//	    correspondences:
//	      - id: 9f1e...
//	        internal_thing: 5b0c...
//	        external_id: '{"identifier":"Root/Wheel","identifierType":"string","direction":"SourceToTarget"}'
//
// # Reserved identifiers
//
// Two records are singletons keyed by reserved identifiers rather than by
// source node identifiers. They remember which parameter types were used
// for material and color, so later sessions keep the same designation.
package mapping
