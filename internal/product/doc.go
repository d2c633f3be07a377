// Package product describes the source product tree read from a CAD
// authoring tool: assemblies, components, parts and their geometric bodies,
// together with the shape and physical properties the tool computed.
//
// A tree is constructed fresh on every read. AssignIdentifiers derives the
// path identifier of every node, which is the join key the correspondence
// store uses to recognize a node on later synchronization runs.
//
// The Connector interface is the boundary to the CAD tool. FileConnector is
// a reference implementation that reads trees from YAML files and writes
// placeholders back as YAML.
package product
