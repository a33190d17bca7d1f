package engine

import "errors"

var (
	// ErrQueueFull is returned when the command queue has no room. The
	// mutation is not applied and can be retried.
	ErrQueueFull = errors.New("command queue is full")
	// ErrNoInstance is returned for AddModule commands without module.
	ErrNoInstance = errors.New("command carries no module instance")
	// ErrNotMIDIReceiver is returned when MIDI is sent to a module that
	// does not accept it.
	ErrNotMIDIReceiver = errors.New("module does not receive midi")
	// ErrMIDIOverflow is returned when a module can't hold more events.
	ErrMIDIOverflow = errors.New("midi event overflow")
	// ErrTooManyMonitors is returned when every monitor slot is taken.
	ErrTooManyMonitors = errors.New("too many monitored ports")
	// ErrNotMonitored is returned when unmonitoring an unknown port.
	ErrNotMonitored = errors.New("port is not monitored")
	// ErrUnknownCommand is returned for commands of unknown kind.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnsupportedMIDI is returned for MIDI messages other than note
	// on, note off and control change.
	ErrUnsupportedMIDI = errors.New("unsupported midi message")
	// ErrInvalidOption is returned for out of range options.
	ErrInvalidOption = errors.New("invalid option")
)
