package difftest

import (
	"fmt"
	"strconv"
	"strings"
)

// Command identifies a sorted map call.
type Command uint8

// Commands. The zero value is invalid so that a decoded operation without a
// command is rejected.
const (
	CmdGet Command = iota + 1
	CmdGetIndex
	CmdSet
	CmdRemove
	CmdSize
)

var commandNames = map[Command]string{
	CmdGet:      "GET",
	CmdGetIndex: "GET_INDEX",
	CmdSet:      "SET",
	CmdRemove:   "REMOVE",
	CmdSize:     "SIZE",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}

	return "Command(" + strconv.Itoa(int(c)) + ")"
}

// IsRead reports whether the command only observes state.
func (c Command) IsRead() bool {
	return c == CmdGet || c == CmdGetIndex || c == CmdSize
}

// MarshalText implements encoding.TextMarshaler.
func (c Command) MarshalText() ([]byte, error) {
	name, ok := commandNames[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, c)
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively.
func (c *Command) UnmarshalText(text []byte) error {
	want := strings.ToUpper(string(text))
	for cmd, name := range commandNames {
		if name == want {
			*c = cmd

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownCommand, text)
}

// Operation is one call against a sorted map.
//
// Fields are interpreted per command: Get and Remove use Key, Set uses Key
// and Value, GetIndex uses Index and Reversed plus Key as the start key when
// Start is set, and Size uses nothing.
type Operation struct {
	Cmd      Command `json:"cmd"`
	Key      int     `json:"key,omitempty"`
	Value    int     `json:"value,omitempty"`
	Index    int     `json:"index,omitempty"`
	Reversed bool    `json:"reversed,omitempty"`
	Start    bool    `json:"start,omitempty"`
}

// Get returns a Get operation.
func Get(key int) Operation { return Operation{Cmd: CmdGet, Key: key} }

// Set returns a Set operation.
func Set(key, value int) Operation { return Operation{Cmd: CmdSet, Key: key, Value: value} }

// Remove returns a Remove operation.
func Remove(key int) Operation { return Operation{Cmd: CmdRemove, Key: key} }

// Size returns a Size operation.
func Size() Operation { return Operation{Cmd: CmdSize} }

// GetIndex returns an unanchored GetIndex operation.
func GetIndex(index int, reversed bool) Operation {
	return Operation{Cmd: CmdGetIndex, Index: index, Reversed: reversed}
}

// GetIndexFrom returns a GetIndex operation anchored at start.
func GetIndexFrom(index int, reversed bool, start int) Operation {
	return Operation{Cmd: CmdGetIndex, Index: index, Reversed: reversed, Key: start, Start: true}
}

// StartKey returns the GetIndex start key, or nil when the operation has
// none.
func (op Operation) StartKey() *int {
	if !op.Start {
		return nil
	}

	key := op.Key

	return &key
}

func (op Operation) String() string {
	switch op.Cmd {
	case CmdGet:
		return fmt.Sprintf("Get(%d)", op.Key)
	case CmdSet:
		return fmt.Sprintf("Set(%d, %d)", op.Key, op.Value)
	case CmdRemove:
		return fmt.Sprintf("Remove(%d)", op.Key)
	case CmdSize:
		return "Size()"
	case CmdGetIndex:
		if op.Start {
			return fmt.Sprintf("GetIndex(%d, %v, start=%d)", op.Index, op.Reversed, op.Key)
		}

		return fmt.Sprintf("GetIndex(%d, %v)", op.Index, op.Reversed)
	default:
		return op.Cmd.String()
	}
}

// Validate reports whether op can be applied.
func (op Operation) Validate() error {
	if _, ok := commandNames[op.Cmd]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, op.Cmd)
	}

	return nil
}
