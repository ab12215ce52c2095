// Package workflow holds the paper lifecycle. Every status change of a paper
// goes through Next so the set of legal transitions lives in one table.
package workflow

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusSubmitted             Status = "Submitted"
	StatusEditorAssigned        Status = "Editor Assigned"
	StatusUnderReview           Status = "Under Review"
	StatusReviewReceived        Status = "Review Received"
	StatusRevisionRequested     Status = "Revision Requested"
	StatusRevisionSubmitted     Status = "Revision Submitted"
	StatusAccepted              Status = "Accepted"
	StatusConditionallyAccepted Status = "Conditionally Accepted"
	StatusRejected              Status = "Rejected"
)

type Event string

const (
	EventEdit                Event = "edit"
	EventAssignEditor        Event = "assign_editor"
	EventAssignReviewers     Event = "assign_reviewers"
	EventAllReviewsIn        Event = "all_reviews_in"
	EventRequestRevision     Event = "request_revision"
	EventSubmitRevision      Event = "submit_revision"
	EventAccept              Event = "accept"
	EventConditionallyAccept Event = "conditionally_accept"
	EventReviseResubmit      Event = "revise_resubmit"
	EventReject              Event = "reject"
)

var ErrIllegalTransition = errors.New("illegal status transition")

type transition struct {
	from  Status
	event Event
}

// keep is used for events that are allowed without moving the paper
const keep Status = ""

var table = map[transition]Status{
	{StatusSubmitted, EventEdit}:      StatusSubmitted,
	{StatusEditorAssigned, EventEdit}: StatusEditorAssigned,

	{StatusSubmitted, EventAssignEditor}:         StatusEditorAssigned,
	{StatusEditorAssigned, EventAssignEditor}:    StatusEditorAssigned,
	{StatusUnderReview, EventAssignEditor}:       keep,
	{StatusReviewReceived, EventAssignEditor}:    keep,
	{StatusRevisionRequested, EventAssignEditor}: keep,
	{StatusRevisionSubmitted, EventAssignEditor}: keep,

	{StatusEditorAssigned, EventAssignReviewers}:    StatusUnderReview,
	{StatusUnderReview, EventAssignReviewers}:       StatusUnderReview,
	{StatusRevisionSubmitted, EventAssignReviewers}: StatusUnderReview,

	{StatusUnderReview, EventAllReviewsIn}: StatusReviewReceived,

	{StatusUnderReview, EventRequestRevision}:           StatusRevisionRequested,
	{StatusReviewReceived, EventRequestRevision}:        StatusRevisionRequested,
	{StatusConditionallyAccepted, EventRequestRevision}: StatusRevisionRequested,

	{StatusRevisionRequested, EventSubmitRevision}: StatusRevisionSubmitted,

	{StatusReviewReceived, EventAccept}:        StatusAccepted,
	{StatusRevisionSubmitted, EventAccept}:     StatusAccepted,
	{StatusConditionallyAccepted, EventAccept}: StatusAccepted,

	{StatusReviewReceived, EventConditionallyAccept}:    StatusConditionallyAccepted,
	{StatusRevisionSubmitted, EventConditionallyAccept}: StatusConditionallyAccepted,

	{StatusReviewReceived, EventReviseResubmit}:    StatusRevisionRequested,
	{StatusRevisionSubmitted, EventReviseResubmit}: StatusRevisionRequested,

	{StatusEditorAssigned, EventReject}:        StatusRejected,
	{StatusReviewReceived, EventReject}:        StatusRejected,
	{StatusRevisionSubmitted, EventReject}:     StatusRejected,
	{StatusConditionallyAccepted, EventReject}: StatusRejected,
}

// Next returns the status a paper in status s moves to when ev happens.
func Next(s Status, ev Event) (Status, error) {
	to, ok := table[transition{s, ev}]
	if !ok {
		return s, fmt.Errorf("%w: %q does not allow %s", ErrIllegalTransition, s, ev)
	}

	if to == keep {
		return s, nil
	}

	return to, nil
}

// Can reports whether ev is allowed in status s.
func Can(s Status, ev Event) bool {
	_, ok := table[transition{s, ev}]
	return ok
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusEditorAssigned, StatusUnderReview, StatusReviewReceived,
		StatusRevisionRequested, StatusRevisionSubmitted, StatusAccepted,
		StatusConditionallyAccepted, StatusRejected:
		return true
	}

	return false
}

// Terminal statuses accept no further events.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}
