package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
)

// Init routes standard log output to the console and, when mirror is non-nil,
// copies every line to it as well (e.g. the redis log ring).
func Init(mirror io.Writer) {
	if mirror == nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, mirror))
}

// Printf logs a formatted message.
func Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Error logs an error with the caller's location and a short context string.
func Error(context string, err error) {
	_, file, line, ok := runtime.Caller(1)
	var callerInfo string
	if ok {
		parts := strings.Split(file, "/")
		if len(parts) > 2 {
			file = strings.Join(parts[len(parts)-2:], "/")
		}
		callerInfo = fmt.Sprintf("%s:%d", file, line)
	}
	log.Printf("[ERROR] in %s: %s\n%v\n", callerInfo, context, err)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	Error(context, err)
	os.Exit(1)
}
