// Command performative plays a song when it sees you holding a cup.
package main

import (
	"runtime"

	"github.com/ayusman/performative/internal/cli"
)

func init() {
	// OpenCV windows and the tray must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.Execute()
}
