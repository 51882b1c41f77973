package replica

import "fmt"

// Role identifies which backend of an Adapter an operation ran against.
type Role string

// Backend roles.
const (
	RoleMaster Role = "master"
	RoleSlave  Role = "slave"
)

// Op names a replicated mutation.
type Op string

// Replicated mutations.
const (
	OpWrite  Op = "write"
	OpDelete Op = "delete"
	OpRename Op = "rename"
)

// Failure describes a single backend mutation that returned an error.
type Failure struct {
	Op   Op
	Role Role
	Key  string
	Err  error
}

// Message renders the failure as a single diagnostic line naming the
// operation, the key and the underlying error text.
func (f Failure) Message() string {
	return fmt.Sprintf("unable to %s %s, error: %v", f.Op, f.Key, f.Err)
}

// Error implements error so a Failure can be wrapped or logged directly.
func (f Failure) Error() string {
	return f.Message()
}

// Unwrap returns the backend error.
func (f Failure) Unwrap() error {
	return f.Err
}
