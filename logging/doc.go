/*
Package logging implements application log instrumentation and Apache
combined access log.

# Application Log

The application log uses the logrus package:

https://github.com/sirupsen/logrus

To send messages to the application log, import this package and use its
methods. Example:

	import log "github.com/sirupsen/logrus"

	func doSomething() {
	    log.Errorf("nothing to do")
	}

Components that need their log output to be observed in tests accept a
Logger instead. Default returns a Logger that writes to the application
log.

During startup initialization, it is possible to redirect the log output
from the default /dev/stderr to another file, to set a common prefix for
each log entry, to set the minimum level and to switch to JSON output.
Setting the prefix may be a good idea when the access log is enabled and
its output is the same as the one of the application log, to make it
easier to split the output for diagnostics.

# Access Log

The access log prints HTTP access information in the Apache combined
access log format, extended with the duration, the requested host and
the flow id. To output entries, use the LogAccess function, or wrap a
handler with NewHandler.

During initialization, it is possible to redirect the access log output
from the default /dev/stderr to another file, or completely disable the
access log.
*/
package logging
