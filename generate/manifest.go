package generate

// BackendArea identifies one functional area of the backend surface.  The
// twelve areas are fixed: every area must stay bound to a covering facility,
// and removing one is a breaking change to the backend surface.
type BackendArea int

// Enumeration of the backend areas.
const (
	AreaSupport           BackendArea = iota // support utilities
	AreaIRCore                               // intermediate representation core
	AreaRegistration                         // dialect and pass registration
	AreaTransforms                           // generic transforms
	AreaPassManagement                       // pass management
	AreaIntegerAlgebra                       // integer set algebra
	AreaExecutionEngine                      // execution engine
	AreaDiagnostics                          // diagnostics
	AreaConversion                           // dialect conversion
	AreaBuiltinTypes                         // built-in types
	AreaBuiltinAttributes                    // built-in attributes
	AreaBackendDialect                       // low level backend dialect bindings
)

func (area BackendArea) String() string {
	switch area {
	case AreaSupport:
		return "support utilities"
	case AreaIRCore:
		return "intermediate representation core"
	case AreaRegistration:
		return "dialect and pass registration"
	case AreaTransforms:
		return "generic transforms"
	case AreaPassManagement:
		return "pass management"
	case AreaIntegerAlgebra:
		return "integer set algebra"
	case AreaExecutionEngine:
		return "execution engine"
	case AreaDiagnostics:
		return "diagnostics"
	case AreaConversion:
		return "dialect conversion"
	case AreaBuiltinTypes:
		return "built-in types"
	case AreaBuiltinAttributes:
		return "built-in attributes"
	case AreaBackendDialect:
		return "backend dialect bindings"
	default:
		return "unknown area"
	}
}

// Facility names what covers a backend area: the package providing it and
// the part of that package carrying the load.
type Facility struct {
	// The import path of the covering package.
	Package string

	// What the package provides for the area.
	Covers string
}

// BackendManifest binds every backend area to its covering facility.
func BackendManifest() map[BackendArea]Facility {
	return map[BackendArea]Facility{
		AreaSupport:           {Package: "chimera/util", Covers: "generic slice and map helpers used across the middle forms"},
		AreaIRCore:            {Package: "chimera/mir", Covers: "the core, flat, and SSA program forms"},
		AreaRegistration:      {Package: "chimera/generate", Covers: "the registered pre-emission pass list"},
		AreaTransforms:        {Package: "chimera/mir", Covers: "flattening and SSA construction"},
		AreaPassManagement:    {Package: "chimera/generate", Covers: "the pass runner applied before emission"},
		AreaIntegerAlgebra:    {Package: "github.com/llir/llvm/ir/constant", Covers: "integer constants and constant expressions"},
		AreaExecutionEngine:   {Package: "chimera/interp", Covers: "the closure compiling evaluator"},
		AreaDiagnostics:       {Package: "chimera/report", Covers: "spans, compile errors, and the reporter"},
		AreaConversion:        {Package: "chimera/generate", Covers: "translation of the SSA form into LLVM IR"},
		AreaBuiltinTypes:      {Package: "chimera/generate", Covers: "the machine word type mapping"},
		AreaBuiltinAttributes: {Package: "chimera/walk", Covers: "definition attributes and their validation"},
		AreaBackendDialect:    {Package: "github.com/llir/llvm/ir", Covers: "LLVM IR construction and rendering"},
	}
}
