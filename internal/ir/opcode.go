// Package ir implements the Instruction Model: the IR
// instruction taxonomy, the per-opcode-family queries optimizer passes
// rely on, and the Block/Continuation/Statement structure instructions
// live in.
//
// Grounded on go/ssa's Instruction/Value interfaces (every SSA
// instruction answers Operands/Referrers/Type the way these
// instructions answer getInputs/getOutputs/getResults) and on
// go/ssa/sanity.go's use of those queries to check structural
// invariants.
package ir

import "fmt"

// Opcode names every instruction variant the middle end emits.
type Opcode int

const (
	// Function call family ("CALL_FOREIGN" / "CALL_CONTROL
	// / CALL_SYNC / CALL_LOCAL / CALL_LOCAL_CONTROL").
	OpCallForeign Opcode = iota
	OpCallControl
	OpCallSync
	OpCallLocal
	OpCallLocalControl

	// Builtin family: pure local/async operator application.
	OpLocalOp
	OpAsyncOp

	// External process spawn.
	OpRunExternal

	// Loop control.
	OpLoopContinue
	OpLoopBreak

	// Annotation-only.
	OpComment

	// Turbine data-movement family.
	OpStoreScalar
	OpStoreFile
	OpStoreArray
	OpStoreBag
	OpStoreRef
	OpLoadScalar
	OpLoadFile
	OpLoadArray
	OpLoadBag
	OpLoadRef
	OpLoadRecursive
	OpStoreRecursive
	OpDerefScalar
	OpDerefFile
	OpArrayLookupRefImm
	OpArrayLookupFuture
	OpArrayInsertImm
	OpArrayInsertFuture
	OpArrayBuild
	OpBagInsert
	OpStructLookup
	OpStructRefLookup
	OpCopyRef
	OpCopyFile
	OpGetFilename
	OpGetFilenameVal
	OpSetFilenameVal
	OpChooseTmpFilename
	OpInitLocalOutputFile

	// Refcount family (piggybackable).
	OpIncrRead
	OpDecrRead
	OpIncrWrite
	OpDecrWrite

	// Updateable family (IR contract only; see Open
	// Questions -- no monotonicity proof implemented).
	OpUpdateMin
	OpUpdateIncr
	OpUpdateScale
	OpLatestValue

	// Checkpointing primitives.
	OpLookupCheckpoint
	OpWriteCheckpoint
	OpPackValues
	OpUnpackValues
	OpFreeBlob
)

var opcodeNames = [...]string{
	OpCallForeign:         "CALL_FOREIGN",
	OpCallControl:         "CALL_CONTROL",
	OpCallSync:            "CALL_SYNC",
	OpCallLocal:           "CALL_LOCAL",
	OpCallLocalControl:    "CALL_LOCAL_CONTROL",
	OpLocalOp:             "LOCAL_OP",
	OpAsyncOp:             "ASYNC_OP",
	OpRunExternal:         "RUN_EXTERNAL",
	OpLoopContinue:        "LOOP_CONTINUE",
	OpLoopBreak:           "LOOP_BREAK",
	OpComment:             "COMMENT",
	OpStoreScalar:         "STORE_SCALAR",
	OpStoreFile:           "STORE_FILE",
	OpStoreArray:          "STORE_ARRAY",
	OpStoreBag:            "STORE_BAG",
	OpStoreRef:            "STORE_REF",
	OpLoadScalar:          "LOAD_SCALAR",
	OpLoadFile:            "LOAD_FILE",
	OpLoadArray:           "LOAD_ARRAY",
	OpLoadBag:             "LOAD_BAG",
	OpLoadRef:             "LOAD_REF",
	OpLoadRecursive:       "LOAD_RECURSIVE",
	OpStoreRecursive:      "STORE_RECURSIVE",
	OpDerefScalar:         "DEREF_SCALAR",
	OpDerefFile:           "DEREF_FILE",
	OpArrayLookupRefImm:   "ARRAY_LOOKUP_REF_IMM",
	OpArrayLookupFuture:   "ARRAY_LOOKUP_FUTURE",
	OpArrayInsertImm:      "ARRAY_INSERT_IMM",
	OpArrayInsertFuture:   "ARRAY_INSERT_FUTURE",
	OpArrayBuild:          "ARRAY_BUILD",
	OpBagInsert:           "BAG_INSERT",
	OpStructLookup:        "STRUCT_LOOKUP",
	OpStructRefLookup:     "STRUCT_REF_LOOKUP",
	OpCopyRef:             "COPY_REF",
	OpCopyFile:            "COPY_FILE",
	OpGetFilename:         "GET_FILENAME",
	OpGetFilenameVal:      "GET_FILENAME_VAL",
	OpSetFilenameVal:      "SET_FILENAME_VAL",
	OpChooseTmpFilename:   "CHOOSE_TMP_FILENAME",
	OpInitLocalOutputFile: "INIT_LOCAL_OUTPUT_FILE",
	OpIncrRead:            "INCR_READ",
	OpDecrRead:            "DECR_READ",
	OpIncrWrite:           "INCR_WRITE",
	OpDecrWrite:           "DECR_WRITE",
	OpUpdateMin:           "UPDATE_MIN",
	OpUpdateIncr:          "UPDATE_INCR",
	OpUpdateScale:         "UPDATE_SCALE",
	OpLatestValue:         "LATEST_VALUE",
	OpLookupCheckpoint:    "LOOKUP_CHECKPOINT",
	OpWriteCheckpoint:     "WRITE_CHECKPOINT",
	OpPackValues:          "PACK_VALUES",
	OpUnpackValues:        "UNPACK_VALUES",
	OpFreeBlob:            "FREE_BLOB",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// InitKind classifies how completely an instruction initializes one of
// its outputs.
type InitKind int

const (
	Full InitKind = iota
	Partial
)

func (k InitKind) String() string {
	if k == Full {
		return "FULL"
	}
	return "PARTIAL"
}
