package asm

import (
	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// blockKind distinguishes the back-patch bookkeeping an open control
// construct needs.
type blockKind int

const (
	blockIf blockKind = iota
	blockWhile
	blockSwitch
)

// openBlock tracks one unclosed if/elseif/else chain, while loop, or
// switch, so its placeholder words can be back-patched once the
// construct's extent is known.
type openBlock struct {
	kind BlockKindAlias

	// falsePatch is the placeholder index to patch with the address of
	// the next branch (elseif/else) or, for the last branch, the
	// overall end-of-construct address.
	falsePatch uint32
	hasFalse   bool

	// endPatches collects every placeholder that must be patched to the
	// address immediately after the whole construct closes.
	endPatches []uint32
}

// BlockKindAlias avoids exporting blockKind while keeping field name
// readable across files in this package.
type BlockKindAlias = blockKind

// Emitter wraps a words.Writer with the control-flow back-patch
// bookkeeping the assembler's back-patch pass needs.
type Emitter struct {
	W       *words.Writer
	Version instructions.Version
	blocks  []*openBlock
}

// NewEmitter creates an emitter for one instruction section.
func NewEmitter(version instructions.Version) *Emitter {
	return &Emitter{W: words.NewWriter(), Version: version}
}

// EmitInstruction writes one fully-formed instruction (no pending
// placeholders) via the shared Instruction.Encode.
func (e *Emitter) EmitInstruction(instr *instructions.Instruction) error {
	return instr.Encode(e.W, e.Version)
}

// EmitIf writes If's opcode, condition, and three placeholder words,
// pushing a new open block.
func (e *Emitter) EmitIf(cond *instructions.Expression, disabled bool) error {
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpIf, e.Version, disabled)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	if err := cond.Encode(e.W, e.Version); err != nil {
		return err
	}
	falseIdx := e.W.Append(0)
	end1 := e.W.Append(0)
	end2 := e.W.Append(0)
	e.blocks = append(e.blocks, &openBlock{kind: blockIf, falsePatch: falseIdx, hasFalse: true, endPatches: []uint32{end1, end2}})
	return nil
}

// EmitElseIf patches the previous branch's false-jump to here, writes
// ElseIf's own condition and two placeholders, and keeps the chain's
// accumulated end-patches.
func (e *Emitter) EmitElseIf(cond *instructions.Expression, disabled bool) error {
	top := e.currentIf()
	here := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, here)
	}

	opWord, err := instructions.EncodeOpCodeWord(instructions.OpElseIf, e.Version, disabled)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	if err := cond.Encode(e.W, e.Version); err != nil {
		return err
	}
	falseIdx := e.W.Append(0)
	endIdx := e.W.Append(0)
	top.falsePatch = falseIdx
	top.hasFalse = true
	top.endPatches = append(top.endPatches, endIdx)
	return nil
}

// EmitElse patches the previous branch's false-jump to here and writes
// Else's opcode (no operands of its own).
func (e *Emitter) EmitElse() error {
	top := e.currentIf()
	here := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, here)
	}
	top.hasFalse = false

	opWord, err := instructions.EncodeOpCodeWord(instructions.OpElse, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	return nil
}

// EmitEndIf patches every remaining false-jump and end-jump in the
// chain to the address right after EndIf, then pops the block.
func (e *Emitter) EmitEndIf() error {
	top := e.currentIf()
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpEndIf, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	end := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, end)
	}
	for _, idx := range top.endPatches {
		e.W.Patch(idx, end)
	}
	e.blocks = e.blocks[:len(e.blocks)-1]
	return nil
}

// EmitWhile writes While's condition and two placeholders (loop-exit,
// loop-continue), pushing a new open block.
func (e *Emitter) EmitWhile(cond *instructions.Expression, disabled bool) error {
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpWhile, e.Version, disabled)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	if err := cond.Encode(e.W, e.Version); err != nil {
		return err
	}
	exitIdx := e.W.Append(0)
	continueIdx := e.W.Append(0)
	e.blocks = append(e.blocks, &openBlock{kind: blockWhile, falsePatch: exitIdx, hasFalse: true, endPatches: []uint32{continueIdx}})
	return nil
}

// EmitEndWhile patches the loop's exit target to here and its continue
// target to the loop's own start, then pops the block.
func (e *Emitter) EmitEndWhile(loopStart uint32) error {
	top := e.currentIf()
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpEndWhile, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	end := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, end)
	}
	for _, idx := range top.endPatches {
		e.W.Patch(idx, loopStart)
	}
	e.blocks = e.blocks[:len(e.blocks)-1]
	return nil
}

func (e *Emitter) currentIf() *openBlock {
	return e.blocks[len(e.blocks)-1]
}

// EmitSwitch writes Switch's opcode, condition, and its two placeholder
// words (end-of-switch, first-case entry, in that disk order), pushing
// a new open block.
func (e *Emitter) EmitSwitch(cond *instructions.Expression) error {
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpSwitch, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	if err := cond.Encode(e.W, e.Version); err != nil {
		return err
	}
	endIdx := e.W.Append(0)
	firstCaseIdx := e.W.Append(0)
	e.blocks = append(e.blocks, &openBlock{kind: blockSwitch, falsePatch: firstCaseIdx, hasFalse: true, endPatches: []uint32{endIdx}})
	return nil
}

// patchCaseEntry patches the previous case's (or the switch's own)
// next-entry placeholder to here, the address this case/default begins
// at.
func (e *Emitter) patchCaseEntry() *openBlock {
	top := e.currentIf()
	here := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, here)
	}
	return top
}

// EmitCase writes Case's opcode, literal value, and its own trailing
// placeholder, chaining from the previous case/switch entry.
func (e *Emitter) EmitCase(value uint32) error {
	top := e.patchCaseEntry()
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpCase, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	e.W.Append(value)
	nextIdx := e.W.Append(0)
	top.falsePatch = nextIdx
	top.hasFalse = true
	return nil
}

// EmitCaseRange writes CaseRange's opcode, inclusive bounds, and its
// own trailing placeholder, chaining from the previous case/switch
// entry.
func (e *Emitter) EmitCaseRange(lo, hi uint32) error {
	top := e.patchCaseEntry()
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpCaseRange, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	e.W.Append(lo)
	e.W.Append(hi)
	nextIdx := e.W.Append(0)
	top.falsePatch = nextIdx
	top.hasFalse = true
	return nil
}

// EmitCaseDefault writes CaseDefault's opcode, its unused word, and its
// own trailing placeholder, chaining from the previous case/switch
// entry.
func (e *Emitter) EmitCaseDefault() error {
	top := e.patchCaseEntry()
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpCaseDefault, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	e.W.Append(0)
	nextIdx := e.W.Append(0)
	top.falsePatch = nextIdx
	top.hasFalse = true
	return nil
}

// EmitEndSwitch patches the last case's trailing placeholder and the
// switch's own end-of-switch placeholder to EndSwitch's own address
// (measured before its opcode word is appended), then appends it and
// pops the block.
func (e *Emitter) EmitEndSwitch() error {
	top := e.currentIf()
	end := e.W.Len()
	if top.hasFalse {
		e.W.Patch(top.falsePatch, end)
	}
	for _, idx := range top.endPatches {
		e.W.Patch(idx, end)
	}
	opWord, err := instructions.EncodeOpCodeWord(instructions.OpEndSwitch, e.Version, false)
	if err != nil {
		return err
	}
	e.W.Append(opWord)
	e.blocks = e.blocks[:len(e.blocks)-1]
	return nil
}

// innermostBreakOp resolves a bare "break" statement to BreakSwitch or
// BreakWhile by scanning the open-block stack for the nearest switch or
// while.
func (e *Emitter) innermostBreakOp() (instructions.OpCode, error) {
	for i := len(e.blocks) - 1; i >= 0; i-- {
		switch e.blocks[i].kind {
		case blockSwitch:
			return instructions.OpBreakSwitch, nil
		case blockWhile:
			return instructions.OpBreakWhile, nil
		}
	}
	return 0, kerr.MakeError(kerr.ErrUnexpectedToken, "break outside while loop or switch")
}
