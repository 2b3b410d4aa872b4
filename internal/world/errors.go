package world

import "fmt"

// ValidationError reports a structural problem in the input, such as a
// collection that is not an array. It is fatal and raised before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dataset: %s: %s", e.Field, e.Reason)
}

// VersionError reports an unsupported generator version.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	if e.Version == "" {
		return "unsupported map version: missing"
	}
	return fmt.Sprintf("unsupported map version: %s", e.Version)
}

// ReferenceError reports a foundational reference that does not resolve.
// It fails the one document that needed it.
type ReferenceError struct {
	From   Kind
	FromID int
	To     Kind
	ToID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d: %s %s not found", e.From, e.FromID, e.To, e.ToID)
}
