package syncengine

import (
	"fmt"
	"time"

	"github.com/illmade-knight/contact-sync/pkg/contactstore"
)

// AddResult is the terminal state of an add-all run.
type AddResult int

const (
	AddSuccess AddResult = iota
	// AddCouldNotCreateGroup is reserved for group-based flows.
	AddCouldNotCreateGroup
	AddCouldNotAddContacts
	AddFailure
)

func (r AddResult) String() string {
	switch r {
	case AddSuccess:
		return "success"
	case AddCouldNotCreateGroup:
		return "couldNotCreateGroup"
	case AddCouldNotAddContacts:
		return "couldNotAddContacts"
	case AddFailure:
		return "failure"
	default:
		return fmt.Sprintf("AddResult(%d)", int(r))
	}
}

// AddOutcome is the result of Engine.AddAll. Message is only set for
// AddFailure. Err carries the underlying cause for logging.
type AddOutcome struct {
	Result         AddResult
	Message        string
	BatchesApplied int
	Err            error
}

func (o AddOutcome) Success() bool { return o.Result == AddSuccess }

// DeleteResult is the terminal state of a delete-all run.
type DeleteResult int

const (
	DeleteSuccess DeleteResult = iota
	// DeleteGroupDoesntExist is reserved for group-based flows.
	DeleteGroupDoesntExist
	DeleteCouldNotFetchContacts
	// DeleteCouldNotDeleteGroup is reserved for group-based flows.
	DeleteCouldNotDeleteGroup
	DeleteCouldNotDeleteContacts
	DeleteFailure
)

func (r DeleteResult) String() string {
	switch r {
	case DeleteSuccess:
		return "success"
	case DeleteGroupDoesntExist:
		return "groupDoesntExist"
	case DeleteCouldNotFetchContacts:
		return "couldNotFetchContacts"
	case DeleteCouldNotDeleteGroup:
		return "couldNotDeleteGroup"
	case DeleteCouldNotDeleteContacts:
		return "couldNotDeleteContacts"
	case DeleteFailure:
		return "failure"
	default:
		return fmt.Sprintf("DeleteResult(%d)", int(r))
	}
}

// DeleteOutcome is the result of Engine.DeleteAll.
type DeleteOutcome struct {
	Result         DeleteResult
	Message        string
	Fetched        int
	BatchesApplied int
	Err            error
}

func (o DeleteOutcome) Success() bool { return o.Result == DeleteSuccess }

// SearchError classifies a failed Search.
type SearchError int

const (
	SearchOK SearchError = iota
	SearchNoIdentifier
	SearchEnumerationError
	SearchFetchError
)

// SearchOutcome is the result of Engine.Search.
type SearchOutcome struct {
	Handles []contactstore.Handle
	Elapsed time.Duration
	Failure SearchError
	Err     error
}

func (o SearchOutcome) Success() bool { return o.Failure == SearchOK }

// DescribeAdd renders an add outcome for display.
func DescribeAdd(o AddOutcome) string {
	switch o.Result {
	case AddSuccess:
		return "Successfully added contacts"
	case AddCouldNotCreateGroup:
		return "Failed to create group"
	case AddCouldNotAddContacts:
		return "Failed to add contacts"
	case AddFailure:
		return "Generic failure: " + o.Message
	default:
		return o.Result.String()
	}
}

// DescribeDelete renders a delete outcome for display.
func DescribeDelete(o DeleteOutcome) string {
	switch o.Result {
	case DeleteSuccess:
		return "Successfully deleted contacts"
	case DeleteGroupDoesntExist:
		return "Group already deleted"
	case DeleteCouldNotFetchContacts:
		return "Could not fetch contacts"
	case DeleteCouldNotDeleteGroup:
		return "Could not delete group"
	case DeleteCouldNotDeleteContacts:
		return "Could not delete contacts"
	case DeleteFailure:
		return "Failed to delete contacts " + o.Message
	default:
		return o.Result.String()
	}
}

// DescribeSearchError renders a search failure for display.
func DescribeSearchError(e SearchError) string {
	switch e {
	case SearchOK:
		return ""
	case SearchNoIdentifier:
		return "Could not find identifier for contact"
	case SearchEnumerationError:
		return "Could not enumerate contacts"
	case SearchFetchError:
		return "Could not fetch contacts"
	default:
		return fmt.Sprintf("SearchError(%d)", int(e))
	}
}
