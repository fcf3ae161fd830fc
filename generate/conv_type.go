package generate

import (
	"fmt"

	"chimera/types"

	lltypes "github.com/llir/llvm/ir/types"
)

// wordType is the one machine shape runtime values take.
var wordType = lltypes.I64

// MachineType maps a source type onto the LLVM type of its runtime
// representation.  Primitives are words; functions are word valued
// signatures over word parameters.  Types without a machine representation
// return an error.
func MachineType(typ types.Type) (lltypes.Type, error) {
	switch v := types.InnerType(typ).(type) {
	case types.PrimType:
		return wordType, nil
	case *types.ArrowType:
		params := make([]lltypes.Type, v.Arity())
		for i := range params {
			params[i] = wordType
		}

		return lltypes.NewFunc(wordType, params...), nil
	default:
		return nil, fmt.Errorf("%s has no machine representation", typ.Repr())
	}
}
