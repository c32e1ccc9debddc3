package feed

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned for lines which are not valid commands.
var ErrMalformed = errors.New("feed: malformed command")

// Op is a membership operation.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpRemove
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Membership is the set of hostnames commands are applied to.
type Membership interface {
	Insert(host string)
	Remove(host string)
}

// Command is a single membership change.
type Command struct {
	Op   Op
	Host string
}

func (c Command) String() string {
	return c.Op.String() + " " + c.Host
}

// Apply applies c to m.
func (c Command) Apply(m Membership) {
	switch c.Op {
	case OpAdd:
		m.Insert(c.Host)
	case OpRemove:
		m.Remove(c.Host)
	}
}

// ParseCommand parses a line of form "add <host>" or "remove <host>".
// Tokens after the hostname are ignored.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	var op Op
	switch fields[0] {
	case "add":
		op = OpAdd
	case "remove":
		op = OpRemove
	default:
		return Command{}, fmt.Errorf("%w: unknown operation %q", ErrMalformed, fields[0])
	}
	if len(fields) < 2 {
		return Command{}, fmt.Errorf("%w: no hostname for %s", ErrMalformed, op)
	}
	return Command{
		Op:   op,
		Host: fields[1],
	}, nil
}
