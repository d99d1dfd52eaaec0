package compiler

import (
	"fmt"
	"log/slog"

	"tacc/pkg/logger"
	"tacc/pkg/tac"
)

// Action is a zero-width marker in a production. The set is closed: every
// value is handled by Context.exec.
type Action uint8

const (
	ActDefineVar Action = iota
	ActSetType
	ActCheckVar
	ActPushValue
	ActPushOperator
	ActAssign
	ActDropTarget
	ActAdd
	ActSub
	ActMul
	ActDiv
	ActRelationalGen
	ActIncrement
	ActLoopHeader
	ActLoopTest
	ActStartIter
	ActEndIter
	ActLoopClose
	numActions
)

var actionNames = [numActions]string{
	ActDefineVar:     "DefineVar",
	ActSetType:       "SetType",
	ActCheckVar:      "CheckVar",
	ActPushValue:     "PushValue",
	ActPushOperator:  "PushOperator",
	ActAssign:        "Assign",
	ActDropTarget:    "DropTarget",
	ActAdd:           "Add",
	ActSub:           "Sub",
	ActMul:           "Mul",
	ActDiv:           "Div",
	ActRelationalGen: "RelationalGen",
	ActIncrement:     "Increment",
	ActLoopHeader:    "LoopHeader",
	ActLoopTest:      "LoopTest",
	ActStartIter:     "StartIter",
	ActEndIter:       "EndIter",
	ActLoopClose:     "LoopClose",
}

func (a Action) String() string {
	if a < numActions {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Context owns every piece of mutable state of one compilation. Contexts are
// never shared; compile units concurrently by giving each its own.
type Context struct {
	Symbols *SymbolTable
	Program *tac.Program

	values      []string // names, literals, temporaries and operators
	pendingType string   // type keyword of the declaration being parsed

	tempCount  int
	labelCount int
	temps      map[string]bool // every temp name handed out

	loopLabels []string      // start, end per open loop
	cutPoints  []int         // Program length at StartIter
	iterBufs   [][]tac.Instr // excised increment code per open loop

	log *slog.Logger
}

// NewContext returns a Context with fresh counters and empty state. A nil
// logger means the package default.
func NewContext(log *slog.Logger) *Context {
	if log == nil {
		log = logger.Default()
	}
	return &Context{
		Symbols: NewSymbolTable(),
		Program: &tac.Program{},
		log:     log,
	}
}

// newTemp skips numbers whose name is already a declared variable.
func (c *Context) newTemp() string {
	for {
		c.tempCount++
		t := fmt.Sprintf("t%d", c.tempCount)
		if _, taken := c.Symbols.Symbol(t); taken {
			continue
		}
		if c.temps == nil {
			c.temps = make(map[string]bool)
		}
		c.temps[t] = true
		return t
	}
}

// renameTemps gives fresh names to temps in buf that a declaration made
// after they were generated now shadows. Only an excised iteration clause
// keeps temps alive across a loop body.
func (c *Context) renameTemps(buf []tac.Instr) []tac.Instr {
	var renamed map[string]string
	rename := func(name string) string {
		if !c.temps[name] {
			return name
		}
		if _, taken := c.Symbols.Symbol(name); !taken {
			return name
		}
		if renamed == nil {
			renamed = make(map[string]string)
		}
		if fresh, ok := renamed[name]; ok {
			return fresh
		}
		fresh := c.newTemp()
		renamed[name] = fresh
		return fresh
	}
	for i := range buf {
		buf[i].Dest = rename(buf[i].Dest)
		buf[i].Arg1 = rename(buf[i].Arg1)
		buf[i].Arg2 = rename(buf[i].Arg2)
	}
	return buf
}

func (c *Context) newLabel() string {
	c.labelCount++
	return fmt.Sprintf("L%d", c.labelCount)
}

// pop removes the top of a stack. Underflow means the grammar and the
// actions disagree, which no input can cause.
func pop[T any](stack *[]T, what string, act Action) (T, error) {
	var zero T
	s := *stack
	if len(s) == 0 {
		return zero, fmt.Errorf("%w: %s stack underflow in @%s", ErrInternal, what, act)
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, nil
}

func (c *Context) popValue(act Action) (string, error) {
	return pop(&c.values, "value", act)
}

// popBinary pops right then left.
func (c *Context) popBinary(act Action) (left, right string, err error) {
	if right, err = c.popValue(act); err != nil {
		return "", "", err
	}
	if left, err = c.popValue(act); err != nil {
		return "", "", err
	}
	return left, right, nil
}

func (c *Context) emitBinary(left, op, right string) {
	t := c.newTemp()
	c.Program.Emit(tac.Binary(t, left, op, right))
	c.values = append(c.values, t)
}

// exec runs one action. last is the most recently matched terminal.
func (c *Context) exec(act Action, last Token) error {
	switch act {
	case ActSetType:
		c.pendingType = last.Lexeme

	case ActDefineVar:
		if err := c.Symbols.Declare(last.Lexeme, c.pendingType, last.Line); err != nil {
			return err
		}
		c.values = append(c.values, last.Lexeme)

	case ActCheckVar:
		if _, err := c.Symbols.Resolve(last.Lexeme, last.Line); err != nil {
			return err
		}

	case ActPushValue, ActPushOperator:
		c.values = append(c.values, last.Lexeme)

	case ActAssign:
		target, value, err := c.popBinary(act)
		if err != nil {
			return err
		}
		c.Program.Emit(tac.Copy(target, value))

	case ActDropTarget:
		if _, err := c.popValue(act); err != nil {
			return err
		}

	case ActAdd, ActSub, ActMul, ActDiv:
		left, right, err := c.popBinary(act)
		if err != nil {
			return err
		}
		c.emitBinary(left, arithOps[act], right)

	case ActRelationalGen:
		right, err := c.popValue(act)
		if err != nil {
			return err
		}
		op, err := c.popValue(act)
		if err != nil {
			return err
		}
		left, err := c.popValue(act)
		if err != nil {
			return err
		}
		c.emitBinary(left, op, right)

	case ActIncrement:
		target, err := c.popValue(act)
		if err != nil {
			return err
		}
		c.Program.Emit(tac.Binary(target, target, "+", "1"))

	case ActLoopHeader:
		start := c.newLabel()
		c.Program.Emit(tac.Label(start))
		c.loopLabels = append(c.loopLabels, start)

	case ActLoopTest:
		cond, err := c.popValue(act)
		if err != nil {
			return err
		}
		end := c.newLabel()
		c.Program.Emit(tac.IfZero(cond, end))
		c.loopLabels = append(c.loopLabels, end)

	case ActStartIter:
		c.cutPoints = append(c.cutPoints, c.Program.Len())

	case ActEndIter:
		cut, err := pop(&c.cutPoints, "cut-point", act)
		if err != nil {
			return err
		}
		c.iterBufs = append(c.iterBufs, c.Program.Excise(cut))

	case ActLoopClose:
		end, err := pop(&c.loopLabels, "loop-label", act)
		if err != nil {
			return err
		}
		start, err := pop(&c.loopLabels, "loop-label", act)
		if err != nil {
			return err
		}
		buf, err := pop(&c.iterBufs, "iteration-buffer", act)
		if err != nil {
			return err
		}
		c.Program.Append(c.renameTemps(buf)...)
		c.Program.Emit(tac.Goto(start))
		c.Program.Emit(tac.Label(end))

	default:
		return fmt.Errorf("%w: unknown action %s", ErrInternal, act)
	}
	return nil
}

var arithOps = map[Action]string{
	ActAdd: "+",
	ActSub: "-",
	ActMul: "*",
	ActDiv: "/",
}

// balanced checks that every stack is empty, which holds after any complete
// program.
func (c *Context) balanced() error {
	switch {
	case len(c.values) != 0:
		return fmt.Errorf("%w: %d values left on the stack: %v", ErrInternal, len(c.values), c.values)
	case len(c.loopLabels) != 0:
		return fmt.Errorf("%w: %d loop labels left open", ErrInternal, len(c.loopLabels))
	case len(c.cutPoints) != 0 || len(c.iterBufs) != 0:
		return fmt.Errorf("%w: iteration buffers left open", ErrInternal)
	}
	return nil
}
