package report

// Below are the "aesthetic" reporting functions that only run if the log level
// is verbose.  These provide additional information about the compilation
// process to the user so as to make the compiler more friendly.

// ReportCompileHeader reports the pre-compilation header: information about
// the compiler's current configuration (version, target, caching).
func ReportCompileHeader(target string, caching bool) {
	if rep.logLevel == LogLevelVerbose {
		displayCompileHeader(target, caching)
	}
}

// ReportBeginPhase reports the beginning of a compilation phase.
func ReportBeginPhase(phase string) {
	if rep.logLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the end of the current compilation phase.
func ReportEndPhase(success bool) {
	if rep.logLevel == LogLevelVerbose {
		displayEndPhase(success)
	}
}

// ReportCompilationFinished reports the concluding message for compilation:
// whether it succeeded along with the final error and warning counts.
func ReportCompilationFinished(success bool) {
	if rep.logLevel == LogLevelVerbose {
		displayCompilationFinished(success, rep.errorCount, rep.warningCount)
	}
}
