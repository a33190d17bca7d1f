package graph

import "errors"

var (
	// ErrNodeExists is returned when a node id is already in use.
	ErrNodeExists = errors.New("node already exists")
	// ErrNodeNotFound is returned when a node id is unknown.
	ErrNodeNotFound = errors.New("node not found")
	// ErrFull is returned when every node slot is taken.
	ErrFull = errors.New("graph is full")
	// ErrTooManyPorts is returned for modules with more ports than a
	// slot can hold.
	ErrTooManyPorts = errors.New("module has too many ports")
	// ErrTooManyParams is returned for modules with more parameters than
	// a slot can hold.
	ErrTooManyParams = errors.New("module has too many parameters")
	// ErrInvalidPort is returned for port slots out of range.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidParam is returned for parameter indexes out of range.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrIncompatible is returned when the signal types of two ports
	// cannot be connected.
	ErrIncompatible = errors.New("incompatible signal types")
	// ErrCycle is returned when a connection would close a feedback
	// loop.
	ErrCycle = errors.New("connection would create a cycle")
	// ErrNotConnected is returned when disconnecting a port without
	// connections.
	ErrNotConnected = errors.New("port is not connected")
	// ErrCorrupt signals a cycle found while ordering. Connect prevents
	// cycles, so this means the store is broken.
	ErrCorrupt = errors.New("graph is corrupt: contains cycle")
)
