// Package script defines the embedded-script bridge contract and a
// gopher-lua implementation. The core pipeline depends only on Bridge,
// never on a particular embedded-language runtime (spec §9 design
// notes).
package script

// FormatSetter is the host operation a script can call to change the
// timestamp format and millisecond-suppression flag (spec §6).
type FormatSetter func(format string, suppressMsec bool)

// PathProvider is the host operation a script can call to learn the
// archive's absolute path, directory, stem, extension, and the
// process's working directory (spec §6).
type PathProvider func() (abs, dir, stem, ext, cwd string)

// Bridge is a replaceable embedded-script capability exposing exactly
// one callback the core invokes per subpacket: ParseData.
type Bridge interface {
	// Load reads and evaluates the script at path, making its
	// ParseData function available for later calls.
	Load(path string) error

	// ParseData invokes the script's ParseData(runtime, timestamp, data)
	// function. Any error it returns is fatal to the Driver (spec §6).
	ParseData(runtime float64, timestamp string, data []byte) error

	// Close releases the interpreter.
	Close()
}

// Error distinguishes a script load/runtime failure from other fatal
// errors, so the top-level command can map it to exit code 2 instead of
// the generic exit code 1 (spec §6, §7).
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
