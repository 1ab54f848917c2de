package socket

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Kind is the data kind carried by a socket. It is fixed at declaration.
type Kind int

const (
	KindImage Kind = iota
	KindInt
	KindFloat
	KindText
	KindTime
)

var kindNames = map[Kind]string{
	KindImage: "IMAGE",
	KindInt:   "INT",
	KindFloat: "FLOAT",
	KindText:  "TEXT",
	KindTime:  "TIME_MS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind for its canonical name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown socket kind %q", s)
}

// IsScalar reports whether values of this kind live in the value store.
func (k Kind) IsScalar() bool {
	return k != KindImage
}

// CtyType returns the cty type used to hold values of this kind. Image
// sockets have no scalar representation and return cty.NilType.
func (k Kind) CtyType() cty.Type {
	switch k {
	case KindInt, KindFloat:
		return cty.Number
	case KindText, KindTime:
		return cty.String
	default:
		return cty.NilType
	}
}

// Role says which way values flow through a socket.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
	// RoleStatic sockets hold node configuration. They can feed other
	// nodes but never receive a connection.
	RoleStatic
)

var roleNames = map[Role]string{
	RoleInput:  "Input",
	RoleOutput: "Output",
	RoleStatic: "Static",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole returns the Role for its canonical name.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown socket role %q", s)
}

// IsSource reports whether a socket of this role may start a connection.
func (r Role) IsSource() bool {
	return r == RoleOutput || r == RoleStatic
}
