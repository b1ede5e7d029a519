package logger

import (
	"log"
	"os"
)

// ProgressLogger logs the main steps of a batch run.
var ProgressLogger = log.New(os.Stderr, "smartlabel.progress: ", log.LstdFlags)

// WarningLogger emits a warning for each non fatal problem, like a style
// whose font cannot be loaded or markup that fails to render.
var WarningLogger = log.New(os.Stderr, "smartlabel.warning: ", log.Lmsgprefix)
