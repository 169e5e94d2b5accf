package models

import (
	"fmt"

	"github.com/google/uuid"
)

// CommandResult is the success payload of a lifecycle command. Failures are
// reported through the returned error, never through Message.
type CommandResult struct {
	Message    string    `json:"message"`
	StorageRef uuid.UUID `json:"storage_ref,omitzero"`
	Matched    int64     `json:"matched"`
	Modified   int64     `json:"modified"`
}

// CommandOutcome pairs a result with its error for the text-oriented CLI shim.
type CommandOutcome struct {
	Result *CommandResult
	Err    error
}

func (o CommandOutcome) Failed() bool {
	return o.Err != nil
}

// String renders the outcome the way the interactive wizards print it:
// failures always start with "Error".
func (o CommandOutcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("Error [%s]: %v", ErrorCode(o.Err), o.Err)
	}
	if o.Result == nil {
		return ""
	}
	return o.Result.Message
}
