package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"chimera/ast"
	"chimera/cache"
	"chimera/common"
	"chimera/depm"
	"chimera/generate"
	"chimera/interp"
	"chimera/lower"
	"chimera/mir"
	"chimera/report"
	"chimera/syntax"
	"chimera/util"
	"chimera/walk"
)

// The compilation modes of the compiler.
const (
	ModeBuild = iota // Compile the module to LLVM output.
	ModeCheck        // Analyze the module without producing output.
	ModeRun          // Evaluate the module without producing output.
)

// Compiler represents the global state of the compiler.
type Compiler struct {
	// rootAbsPath is the absolute path to the compilation root.
	rootAbsPath string

	// mode is the compilation mode the compiler runs in.
	mode int

	// rootModule is the module being compiled.
	rootModule *depm.ChimModule

	// emit names an intermediate form to print to standard output in place of
	// normal compilation output.  It is empty for normal builds.
	emit string

	// outPath is the path the LLVM output is written to.
	outPath string

	// pkgList is the list of all packages of the module being compiled: the
	// root package first, sub-packages in directory order after it.
	pkgList []*depm.ChimPackage
}

// NewCompiler creates a new compiler operating in the given mode on the
// module rooted at rootRelPath.
func NewCompiler(rootRelPath string, mode int) *Compiler {
	rootAbsPath, err := filepath.Abs(rootRelPath)
	if err != nil {
		report.ReportFatal("error calculating absolute path: %s", err)
	}

	return &Compiler{rootAbsPath: rootAbsPath, mode: mode}
}

// SelectEmit selects the intermediate form the compiler prints in place of
// its normal output: one of `ast`, `cst`, `ccf`, `fcf`, `ssa`, or `llvm`.
// The `cst` form is the checked tree: the parsed form annotated with the
// types and call classifications the checker settled on.
func (c *Compiler) SelectEmit(form string) {
	switch form {
	case "ast", "cst", "ccf", "fcf", "ssa", "llvm":
		c.emit = form
	default:
		report.ReportFatal("unknown emit form `%s`", form)
	}
}

// Compile runs the compiler in its configured mode and returns the exit code
// of compilation.
func (c *Compiler) Compile() int {
	mod, ok := depm.LoadModule(c.rootAbsPath)
	if !ok {
		return 1
	}
	c.rootModule = mod

	if c.outPath == "" {
		c.outPath = mod.Name + ".ll"
	}

	report.ReportCompileHeader(runtime.GOOS+"/"+runtime.GOARCH, c.useCache())

	if !c.analyze() {
		report.ReportCompilationFinished(false)
		return 1
	}

	if c.emit == "ast" || c.emit == "cst" {
		c.emitTrees(c.emit == "cst")
		return 0
	}

	switch c.mode {
	case ModeCheck:
		report.ReportCompilationFinished(true)
		return 0
	case ModeRun:
		if err := interp.Run(mod.RootPackage); err != nil {
			report.DisplayErrorMessage("Runtime Fault", err.Error())
			return 1
		}

		return 0
	default:
		return c.generateOutput()
	}
}

// -----------------------------------------------------------------------------

// analyze parses and semantically checks every package of the module.  It
// returns false if any errors occurred.
func (c *Compiler) analyze() bool {
	report.ReportBeginPhase("Parsing")
	c.initPackages()

	if !report.ShouldProceed() {
		report.ReportEndPhase(false)
		return false
	}

	c.wireImports()
	walkOrder := c.walkOrder()

	if !report.ShouldProceed() {
		report.ReportEndPhase(false)
		return false
	}
	report.ReportEndPhase(true)

	// Packages are checked in dependency order so imported symbols are always
	// fully typed before any importer looks them up.
	report.ReportBeginPhase("Checking")
	for _, pkg := range walkOrder {
		walk.WalkPackage(pkg)
	}

	ok := report.ShouldProceed()
	report.ReportEndPhase(ok)
	return ok
}

// initPackages locates and parses all the packages of the module: the root
// package plus one package per immediate subdirectory holding source files.
func (c *Compiler) initPackages() {
	c.rootModule.RootPackage = c.initPkg(c.rootModule.Name, c.rootAbsPath)

	finfos, err := os.ReadDir(c.rootAbsPath)
	if err != nil {
		report.ReportFatal("failed to read module directory: %s", err)
	}

	for _, finfo := range finfos {
		if !finfo.IsDir() || strings.HasPrefix(finfo.Name(), ".") {
			continue
		}

		dirAbsPath := filepath.Join(c.rootAbsPath, finfo.Name())
		if !dirHasSources(dirAbsPath) {
			continue
		}

		if !depm.IsValidIdentifier(finfo.Name()) {
			report.ReportModuleError(c.rootModule.Name, "package directory name `%s` is not a valid identifier", finfo.Name())
			continue
		}

		c.rootModule.SubPackages[finfo.Name()] = c.initPkg(finfo.Name(), dirAbsPath)
	}
}

// dirHasSources returns whether a directory directly contains source files.
func dirHasSources(dirAbsPath string) bool {
	finfos, err := os.ReadDir(dirAbsPath)
	if err != nil {
		return false
	}

	for _, finfo := range finfos {
		if !finfo.IsDir() && filepath.Ext(finfo.Name()) == common.ChimeraFileExt {
			return true
		}
	}

	return false
}

// initPkg initializes a single package: every source file in its directory is
// parsed and its global definitions declared.
func (c *Compiler) initPkg(name, pkgAbsPath string) *depm.ChimPackage {
	pkg := &depm.ChimPackage{
		ID:          depm.GenerateIDFromPath(pkgAbsPath),
		Name:        name,
		Parent:      c.rootModule,
		GlobalTable: depm.NewSymbolTable(),
		Imports:     make(map[string]*depm.ChimPackage),
	}
	depm.SeedPrelude(pkg)
	c.pkgList = append(c.pkgList, pkg)

	finfos, err := os.ReadDir(pkgAbsPath)
	if err != nil {
		report.ReportFatal("failed to read directory of package `%s`: %s", name, err)
	}

	for _, finfo := range finfos {
		if finfo.IsDir() || filepath.Ext(finfo.Name()) != common.ChimeraFileExt {
			continue
		}

		fileAbsPath := filepath.Join(pkgAbsPath, finfo.Name())
		pkg.Files = append(pkg.Files, &depm.ChimFile{
			Parent:     pkg,
			AbsPath:    fileAbsPath,
			ReprPath:   c.reprPath(fileAbsPath),
			FileNumber: len(pkg.Files),
		})
	}

	if len(pkg.Files) == 0 {
		report.ReportModuleError(c.rootModule.Name, "package `%s` contains no compileable source files", name)
		return pkg
	}

	// Parse the files of the package concurrently.  The package's global
	// table synchronizes definitions across files.
	parsed := make([]bool, len(pkg.Files))
	var wg sync.WaitGroup
	for i, chFile := range pkg.Files {
		wg.Add(1)

		go func(i int, chFile *depm.ChimFile) {
			defer wg.Done()
			parsed[i] = parseFile(chFile)
		}(i, chFile)
	}
	wg.Wait()

	// Drop the files that failed to parse so later phases only ever see well
	// formed files.
	kept := pkg.Files[:0]
	for i, chFile := range pkg.Files {
		if parsed[i] {
			kept = append(kept, chFile)
		}
	}
	pkg.Files = kept

	return pkg
}

// parseFile parses a single source file, declaring its global definitions.
// It returns false if the file fails to parse.
func parseFile(chFile *depm.ChimFile) bool {
	file, err := os.Open(chFile.AbsPath)
	if err != nil {
		report.ReportFatal("failed to open source file at `%s`: %s", chFile.AbsPath, err)
	}
	defer file.Close()

	return syntax.NewParser(chFile, bufio.NewReader(file)).Parse()
}

// reprPath produces the path of a source file displayed in error messages:
// the file's path relative to the directory containing the module root.
func (c *Compiler) reprPath(fileAbsPath string) string {
	relPath, err := filepath.Rel(filepath.Dir(c.rootAbsPath), fileAbsPath)
	if err != nil {
		return fileAbsPath
	}

	return relPath
}

// wireImports resolves the import items of every parsed file to packages of
// the module.
func (c *Compiler) wireImports() {
	for _, pkg := range c.pkgList {
		for _, chFile := range pkg.Files {
			for _, item := range chFile.Items {
				imp, ok := item.(*ast.Import)
				if !ok {
					continue
				}

				dep := c.findPackage(imp.ModName)
				if dep == nil {
					report.ReportCompileError(chFile.AbsPath, chFile.ReprPath, imp.NameSpan, "module `%s` has no package named `%s`", c.rootModule.Name, imp.ModName)
					continue
				}

				if dep == pkg {
					report.ReportCompileError(chFile.AbsPath, chFile.ReprPath, imp.NameSpan, "a package cannot import itself")
					continue
				}

				pkg.Imports[imp.ModName] = dep
			}
		}
	}
}

// findPackage resolves an imported package name within the module.  The root
// package goes by the module's name.
func (c *Compiler) findPackage(name string) *depm.ChimPackage {
	if name == c.rootModule.Name {
		return c.rootModule.RootPackage
	}

	return c.rootModule.SubPackages[name]
}

// Package states used while ordering packages for checking.
const (
	unvisited = iota
	visiting
	visited
)

// walkOrder orders the packages of the module so that every package is
// checked after all the packages it imports.  Import cycles are reported as
// module errors.
func (c *Compiler) walkOrder() []*depm.ChimPackage {
	states := make(map[uint]int)
	var order []*depm.ChimPackage

	var visit func(pkg *depm.ChimPackage)
	visit = func(pkg *depm.ChimPackage) {
		switch states[pkg.ID] {
		case visiting:
			report.ReportModuleError(c.rootModule.Name, "package `%s` is part of an import cycle", pkg.Name)
			return
		case visited:
			return
		}

		states[pkg.ID] = visiting
		for _, name := range util.SortedKeys(pkg.Imports) {
			visit(pkg.Imports[name])
		}

		states[pkg.ID] = visited
		order = append(order, pkg)
	}

	for _, pkg := range c.pkgList {
		visit(pkg)
	}

	return order
}

// -----------------------------------------------------------------------------

// emitTrees prints the tree form of every file of every package: the plain
// parsed form, or the checked form with its inferred types when typed is set.
func (c *Compiler) emitTrees(typed bool) {
	for _, pkg := range c.pkgList {
		for _, chFile := range pkg.Files {
			for _, item := range chFile.Items {
				if typed {
					fmt.Print(ast.SprintTyped(item))
				} else {
					fmt.Print(ast.Sprint(item))
				}
			}
		}
	}
}

// useCache returns whether this compilation can use the artifact cache.
// Emitting an intermediate form always bypasses the cache.
func (c *Compiler) useCache() bool {
	return c.mode == ModeBuild && c.rootModule.ShouldCache && c.emit == ""
}

// generateOutput runs the back half of the compiler: lowering, flattening,
// SSA construction, and LLVM emission.  The artifact cache short circuits
// all of it when every source file of the module is unchanged.
func (c *Compiler) generateOutput() int {
	var db *cache.Cache
	var fileHashes map[string]string
	if c.useCache() {
		db, fileHashes = c.openCache()
	}

	if db != nil {
		defer db.Close()

		artifact, hit, err := db.LookupArtifact(c.rootModule.ID, fileHashes)
		if err != nil {
			report.ReportModuleWarning(c.rootModule.Name, "cache lookup failed: %s", err)
		} else if hit {
			return c.writeOutput(artifact)
		}
	}

	report.ReportBeginPhase("Transforming")

	ccf, err := lower.Lower(c.rootModule.RootPackage)
	if err != nil {
		report.ReportEndPhase(false)
		report.ReportModuleError(c.rootModule.Name, "%s", err)
		report.ReportCompilationFinished(false)
		return 1
	}

	if c.emit == "ccf" {
		report.ReportEndPhase(true)
		fmt.Print(ccf.Repr())
		return 0
	}

	// Flattening reports its own compile errors.
	fcf, err := mir.Flatten(ccf)
	if err != nil {
		report.ReportEndPhase(false)
		report.ReportCompilationFinished(false)
		return 1
	}

	if c.emit == "fcf" {
		report.ReportEndPhase(true)
		fmt.Print(fcf.Repr())
		return 0
	}

	ssa := mir.ToSSA(fcf)
	report.ReportEndPhase(true)

	if c.emit == "ssa" {
		fmt.Print(ssa.Repr())
		return 0
	}

	report.ReportBeginPhase("Generating")
	text := generate.NewGenerator(ssa).Generate().String()
	report.ReportEndPhase(true)

	if c.emit == "llvm" {
		fmt.Print(text)
		return 0
	}

	if db != nil {
		if err := db.StoreArtifact(c.rootModule.ID, fileHashes, text); err != nil {
			report.ReportModuleWarning(c.rootModule.Name, "cache store failed: %s", err)
		}
	}

	return c.writeOutput(text)
}

// openCache opens the module's artifact cache and hashes every source file
// of the module.  Cache failures never fail the build: they only disable
// caching for this compilation.
func (c *Compiler) openCache() (*cache.Cache, map[string]string) {
	db, err := cache.Open(filepath.Join(c.rootAbsPath, common.ChimeraCacheDir))
	if err != nil {
		report.ReportModuleWarning(c.rootModule.Name, "compilation cache unavailable: %s", err)
		return nil, nil
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		report.ReportModuleWarning(c.rootModule.Name, "compilation cache unavailable: %s", err)
		return nil, nil
	}

	fileHashes := make(map[string]string)
	for _, pkg := range c.pkgList {
		for _, chFile := range pkg.Files {
			hash, err := cache.HashFile(chFile.AbsPath)
			if err != nil {
				db.Close()
				report.ReportModuleWarning(c.rootModule.Name, "compilation cache unavailable: %s", err)
				return nil, nil
			}

			fileHashes[chFile.AbsPath] = hash
		}
	}

	return db, fileHashes
}

// writeOutput writes the final LLVM output file and concludes compilation.
func (c *Compiler) writeOutput(text string) int {
	writeOutputFile(c.outPath, text)
	report.ReportCompilationFinished(true)
	return 0
}

// writeOutputFile is used to quickly write an output file for the compiler.
func writeOutputFile(fpath, content string) {
	file, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		report.ReportFatal("failed to open output file `%s`: %s", fpath, err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		report.ReportFatal("failed to write output to file `%s`: %s", fpath, err)
	}
}
