package common

// ChimeraVersion is the current Chimera version as a string.
const ChimeraVersion string = "0.5.0"

// ChimeraManifestName is the name for Chimera module manifest files.
const ChimeraManifestName string = "chimera.toml"

// ChimeraFileExt is the file extension for a Chimera source file.
const ChimeraFileExt string = ".chim"

// ChimeraCacheDir is the compilation caching directory name.
const ChimeraCacheDir string = ".chimera"
