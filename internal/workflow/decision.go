package workflow

import "errors"

// Decision is the final verdict an editor records on a paper. It is stored
// separately from the paper status.
type Decision string

const (
	DecisionAccept              Decision = "Accept"
	DecisionReject              Decision = "Reject"
	DecisionConditionallyAccept Decision = "Conditionally Accept"
	DecisionReviseResubmit      Decision = "Revise & Resubmit"
)

var ErrUnknownDecision = errors.New("unknown decision")

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionAccept, DecisionReject, DecisionConditionallyAccept, DecisionReviseResubmit:
		return d, nil
	}

	return "", ErrUnknownDecision
}

// Event maps the decision onto the lifecycle event it triggers.
func (d Decision) Event() Event {
	switch d {
	case DecisionAccept:
		return EventAccept
	case DecisionReject:
		return EventReject
	case DecisionConditionallyAccept:
		return EventConditionallyAccept
	default:
		return EventReviseResubmit
	}
}

// Recommendation is what a reviewer suggests to the editor.
type Recommendation string

const (
	RecommendAccept        Recommendation = "Accept"
	RecommendMinorRevision Recommendation = "Minor Revision"
	RecommendMajorRevision Recommendation = "Major Revision"
	RecommendReject        Recommendation = "Reject"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendAccept, RecommendMinorRevision, RecommendMajorRevision, RecommendReject:
		return true
	}

	return false
}
