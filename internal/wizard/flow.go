// Package wizard drives the scripted document-entry conversation as an
// explicit finite-state machine. The original UI advanced the dialogue by
// sniffing keywords inline; here every transition goes through Transition,
// a pure function over a tagged step type, and all free-text heuristics live
// behind ClassifyIntent so the machine itself stays deterministic.
package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"pd-smartdoc/internal/service"
)

// DocType selects which document flow a session runs.
type DocType string

const (
	DocTypeNorm      DocType = "edps"
	DocTypeProcedure DocType = "dvp"
	DocTypeAnalysis  DocType = "dfmea"
)

// Step is the tagged state of a conversation.
type Step string

const (
	StepInitial    Step = "initial"    // choosing manual entry, AI shortcut, or browsing
	StepAIInput    Step = "aiInput"    // waiting for the free-text description to send to SAI
	StepField      Step = "field"      // collecting flow fields one at a time
	StepLink       Step = "link"       // offering a cross-reference link
	StepSelectLink Step = "selectLink" // waiting for the user to pick a link target
	StepConfirm    Step = "confirm"    // draft assembled, waiting for save/cancel
	StepComplete   Step = "complete"   // saved; next input starts over
)

// State is everything a session carries between inputs.
type State struct {
	Step       Step
	FieldIndex int
	LinkIndex  int
	Draft      map[string]string
}

// FieldPrompt is one scripted question of a flow. Rating fields only accept
// an integer between 1 and 10.
type FieldPrompt struct {
	Name   string
	Prompt string
	Rating bool
}

// LinkPrompt is one optional cross-reference offer. The chosen target lands
// in the draft under "<Name>Id" and "<Name>Description".
type LinkPrompt struct {
	Name   string
	Offer  string
	Yes    string // quick reply accepting the offer
	No     string // quick reply skipping it
	Linked string // format for the confirmation line, takes the target label
}

// Flow is the static script for one document type. Links, when present, are
// offered after the first LinkAfter fields; remaining fields follow.
type Flow struct {
	DocType   DocType
	Greeting  string
	AIPrompt  string
	Fields    []FieldPrompt
	Links     []LinkPrompt
	LinkAfter int
	Rules     []service.FieldRule // extraction rules for the AI shortcut
}

// Effect is an action the caller must perform after a transition. The
// transition function itself never touches services or I/O.
type Effect interface{ isEffect() }

// Say appends an assistant message.
type Say struct{ Text string }

// Suggest offers quick replies for the next input.
type Suggest struct{ Replies []string }

// GenerateDraft asks the caller to run the flow's AI template with the given
// description and feed the extracted fields back through ApplyDraft.
type GenerateDraft struct{ Description string }

// SaveDraft asks the caller to persist the assembled draft.
type SaveDraft struct{ Draft map[string]string }

// ListExisting asks the caller to show the current documents of this type.
type ListExisting struct{}

// ListLinkTargets asks the caller to present the candidates for the named
// link so the user can pick one.
type ListLinkTargets struct{ Link string }

// MatchLinkTarget asks the caller to resolve the user's input against the
// named link's candidates and feed a hit back through ApplyLinkChoice.
type MatchLinkTarget struct {
	Link  string
	Input string
}

func (Say) isEffect()             {}
func (Suggest) isEffect()         {}
func (GenerateDraft) isEffect()   {}
func (SaveDraft) isEffect()       {}
func (ListExisting) isEffect()    {}
func (ListLinkTargets) isEffect() {}
func (MatchLinkTarget) isEffect() {}

var initialReplies = []string{"Create new", "Use AI", "View existing"}

// NewState opens a session at the greeting.
func NewState() State {
	return State{Step: StepInitial, Draft: map[string]string{}}
}

// Opening returns the effects that present a fresh session.
func (f Flow) Opening() []Effect {
	return []Effect{Say{Text: f.Greeting}, Suggest{Replies: initialReplies}}
}

// Transition advances the machine by one user input. It is pure: same state
// and input, same result.
func Transition(flow Flow, state State, input string) (State, []Effect) {
	switch state.Step {
	case StepInitial:
		return transitionInitial(flow, state, ClassifyIntent(input))
	case StepAIInput:
		state.Step = StepConfirm
		return state, []Effect{GenerateDraft{Description: input}}
	case StepField:
		return transitionField(flow, state, input)
	case StepLink:
		return transitionLink(flow, state, input)
	case StepSelectLink:
		return transitionSelectLink(flow, state, input)
	case StepConfirm:
		return transitionConfirm(flow, state, ClassifyIntent(input))
	case StepComplete:
		if ClassifyIntent(input) == IntentCreate {
			fresh := NewState()
			return fresh, flow.Opening()
		}
		return state, []Effect{Say{Text: "Session finished. Start a new session to create another document."}}
	default:
		return state, nil
	}
}

func transitionInitial(flow Flow, state State, intent Intent) (State, []Effect) {
	switch intent {
	case IntentUseAI:
		state.Step = StepAIInput
		return state, []Effect{Say{Text: flow.AIPrompt}}
	case IntentCreate:
		state.Step = StepField
		state.FieldIndex = 0
		return state, []Effect{Say{Text: flow.Fields[0].Prompt}}
	case IntentView:
		return state, []Effect{ListExisting{}}
	default:
		return state, []Effect{
			Say{Text: "I can help you create a new document or view existing ones. What would you like to do?"},
			Suggest{Replies: initialReplies},
		}
	}
}

func transitionField(flow Flow, state State, input string) (State, []Effect) {
	field := flow.Fields[state.FieldIndex]
	value := strings.TrimSpace(input)
	if field.Rating {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 10 {
			return state, []Effect{Say{Text: fmt.Sprintf("Please enter a number between 1 and 10 for %s.", field.Name)}}
		}
	}
	state.Draft = cloneDraft(state.Draft)
	state.Draft[field.Name] = value

	next := state.FieldIndex + 1
	if next == flow.LinkAfter && state.LinkIndex < len(flow.Links) {
		return linkPhase(flow, state)
	}
	if next < len(flow.Fields) {
		state.FieldIndex = next
		return state, []Effect{Say{Text: flow.Fields[next].Prompt}}
	}

	return confirmPhase(flow, state)
}

// linkPhase offers the current link, or resumes the remaining fields once
// every link has been handled.
func linkPhase(flow Flow, state State) (State, []Effect) {
	if state.LinkIndex < len(flow.Links) {
		link := flow.Links[state.LinkIndex]
		state.Step = StepLink
		return state, []Effect{
			Say{Text: link.Offer},
			Suggest{Replies: []string{link.Yes, link.No}},
		}
	}
	if flow.LinkAfter < len(flow.Fields) {
		state.Step = StepField
		state.FieldIndex = flow.LinkAfter
		return state, []Effect{Say{Text: flow.Fields[flow.LinkAfter].Prompt}}
	}
	return confirmPhase(flow, state)
}

func confirmPhase(flow Flow, state State) (State, []Effect) {
	state.Step = StepConfirm
	return state, []Effect{
		Say{Text: draftSummary(flow, state.Draft)},
		Suggest{Replies: []string{"Yes, save it", "No, cancel"}},
	}
}

func transitionLink(flow Flow, state State, input string) (State, []Effect) {
	link := flow.Links[state.LinkIndex]
	if wantsLink(input) {
		state.Step = StepSelectLink
		return state, []Effect{ListLinkTargets{Link: link.Name}}
	}
	state.LinkIndex++
	return linkPhase(flow, state)
}

func transitionSelectLink(flow Flow, state State, input string) (State, []Effect) {
	if ClassifyIntent(input) == IntentNo {
		state.LinkIndex++
		return linkPhase(flow, state)
	}
	link := flow.Links[state.LinkIndex]
	return state, []Effect{MatchLinkTarget{Link: link.Name, Input: input}}
}

// ApplyLinkChoice records a resolved link target in the draft and moves on to
// the next link offer or the remaining fields.
func ApplyLinkChoice(flow Flow, state State, targetID, label string) (State, []Effect) {
	link := flow.Links[state.LinkIndex]
	state.Draft = cloneDraft(state.Draft)
	state.Draft[link.Name+"Id"] = targetID
	state.Draft[link.Name+"Description"] = label
	state.LinkIndex++

	next, effects := linkPhase(flow, state)
	return next, append([]Effect{Say{Text: fmt.Sprintf(link.Linked, label)}}, effects...)
}

// wantsLink mirrors the affirmative phrases the link offers accept.
func wantsLink(input string) bool {
	text := strings.ToLower(input)
	for _, kw := range []string{"yes", "link", "sim", "vincular"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func transitionConfirm(flow Flow, state State, intent Intent) (State, []Effect) {
	switch intent {
	case IntentYes:
		draft := state.Draft
		state.Step = StepComplete
		return state, []Effect{SaveDraft{Draft: draft}}
	case IntentNo:
		fresh := NewState()
		return fresh, []Effect{
			Say{Text: "Cancelled. Would you like to start over?"},
			Suggest{Replies: initialReplies},
		}
	default:
		return state, []Effect{
			Say{Text: "Should I save this document?"},
			Suggest{Replies: []string{"Yes, save it", "No, cancel"}},
		}
	}
}

// ApplyDraft merges AI-extracted fields into the session and moves it to the
// confirmation step. Fields the extraction did not find stay absent so the
// summary shows them as empty rather than fabricated.
func ApplyDraft(flow Flow, state State, fields map[string]string) (State, []Effect) {
	state.Draft = cloneDraft(state.Draft)
	for name, value := range fields {
		state.Draft[name] = value
	}
	state.Step = StepConfirm
	return state, []Effect{
		Say{Text: draftSummary(flow, state.Draft)},
		Suggest{Replies: []string{"Yes, save it", "No, cancel"}},
	}
}

func draftSummary(flow Flow, draft map[string]string) string {
	var b strings.Builder
	b.WriteString("Here's a summary of your document:\n")
	for _, field := range flow.Fields {
		fmt.Fprintf(&b, "%s: %s\n", field.Name, draft[field.Name])
	}
	for _, link := range flow.Links {
		if label := draft[link.Name+"Description"]; label != "" {
			fmt.Fprintf(&b, "%sControl: %s\n", link.Name, label)
		}
	}
	b.WriteString("Would you like to save it?")
	return b.String()
}

func cloneDraft(draft map[string]string) map[string]string {
	out := make(map[string]string, len(draft))
	for k, v := range draft {
		out[k] = v
	}
	return out
}
