// Package cmd is the top level driver package of the compiler: it parses the
// command line, manages compiler state, and runs all the phases of
// compilation.
package cmd

import (
	"os"

	"chimera/common"
	"chimera/depm"
	"chimera/report"

	"github.com/ComedicChimera/olive"
)

// RunCompiler is the main entry point for the `chimerac` CLI utility.  It
// returns the exit code of the process.
func RunCompiler() int {
	// Set up the argument parser and all its subcommands and arguments.
	cli := olive.NewCLI("chimerac", "chimerac is a tool for building and running Chimera modules", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a module to LLVM output", true)
	buildCmd.AddPrimaryArg("module-path", "the path to the module to build", true)
	buildCmd.AddStringArg("outpath", "o", "the path to write output to", false)
	buildCmd.AddStringArg("emit", "e", "the form to emit: ast, cst, ccf, fcf, ssa, or llvm", false)

	runCmd := cli.AddSubcommand("run", "compile and evaluate a module", true)
	runCmd.AddPrimaryArg("module-path", "the path to the module to run", true)

	checkCmd := cli.AddSubcommand("check", "analyze a module without producing output", true)
	checkCmd.AddPrimaryArg("module-path", "the path to the module to check", true)

	modCmd := cli.AddSubcommand("mod", "manage modules", true)
	modInitCmd := modCmd.AddSubcommand("init", "initialize a module in the working directory", true)
	modInitCmd.AddFlag("caching", "ch", "indicate whether compilation caching should be enabled for this module")
	modInitCmd.AddPrimaryArg("module-name", "the name of the module to create", true)

	cli.AddSubcommand("version", "print the Chimera version", false)

	// Run the argument parser.
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.DisplayErrorMessage("Usage Error", err.Error())
		return 1
	}

	// Process the inputed command line.
	subcmdName, subResult, _ := result.Subcommand()
	logLevel := logLevelFromName(result.Arguments["loglevel"].(string))

	switch subcmdName {
	case "build":
		return execCompileCommand(subResult, logLevel, ModeBuild)
	case "run":
		return execCompileCommand(subResult, logLevel, ModeRun)
	case "check":
		return execCompileCommand(subResult, logLevel, ModeCheck)
	case "mod":
		return execModCommand(subResult, logLevel)
	case "version":
		report.DisplayInfoMessage("Chimera Version", common.ChimeraVersion)
	}

	return 0
}

// execCompileCommand executes the build, run, and check subcommands and
// handles all errors related to them.
func execCompileCommand(result *olive.ArgParseResult, logLevel, mode int) int {
	report.InitReporter(logLevel)

	// The primary argument is the root module path.
	rootPath, _ := result.PrimaryArg()
	c := NewCompiler(rootPath, mode)

	if emit, ok := result.Arguments["emit"]; ok {
		c.SelectEmit(emit.(string))
	}

	if outPath, ok := result.Arguments["outpath"]; ok {
		c.outPath = outPath.(string)
	}

	return c.Compile()
}

// execModCommand executes the `mod` subcommand and its subcommands.  It
// handles all errors related to this command.
func execModCommand(result *olive.ArgParseResult, logLevel int) int {
	report.InitReporter(logLevel)

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "init":
		workDir, err := os.Getwd()
		if err != nil {
			report.ReportFatal("failed to get working directory: %s", err)
		}

		modName, _ := subResult.PrimaryArg()
		if err := depm.InitModule(modName, workDir, subResult.HasFlag("caching")); err != nil {
			report.DisplayErrorMessage("Module Init Error", err.Error())
			return 1
		}
	}

	return 0
}

// logLevelFromName converts a log level selector string into a log level.
func logLevelFromName(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	default:
		return report.LogLevelVerbose
	}
}
