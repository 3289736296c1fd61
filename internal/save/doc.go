// Package save turns pending entity changes into a save bundle, sends it
// through a transport and reconciles the server's answer with the tracked
// entity graph.
//
// A save runs through Serializer (bundle), Transport (wire) and
// ResultProcessor (key remapping and merge). Operation ties the three
// together and records the state of one save.
package save
