package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pd-smartdoc/internal/domain"
	"pd-smartdoc/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Flows returns the scripted flow per document type.
func Flows() map[DocType]Flow {
	return map[DocType]Flow{
		DocTypeNorm: {
			DocType:  DocTypeNorm,
			Greeting: "Welcome to the EDPS norm assistant. Create a norm manually, generate one with AI, or view existing norms.",
			AIPrompt: "Describe the norm you need and I will draft it with AI.",
			Fields: []FieldPrompt{
				{Name: "normNumber", Prompt: "What is the norm number? (e.g. NP-2024-001)"},
				{Name: "title", Prompt: "What is the title of this norm?"},
				{Name: "description", Prompt: "Please provide a detailed description (step-by-step procedure)."},
				{Name: "target", Prompt: "What is the target or objective for this norm?"},
			},
			Rules: service.NormFieldRules,
		},
		DocTypeProcedure: {
			DocType:  DocTypeProcedure,
			Greeting: "Welcome to the DVP test assistant. Create a test procedure manually, generate one with AI, or view existing procedures.",
			AIPrompt: "Describe the test you need and I will draft it with AI.",
			Fields: []FieldPrompt{
				{Name: "procedureId", Prompt: "What is the procedure id? (e.g. DVP-001)"},
				{Name: "testName", Prompt: "What is the test name?"},
				{Name: "performanceObjective", Prompt: "What is the performance objective?"},
				{Name: "acceptanceCriteria", Prompt: "What are the acceptance criteria?"},
				{Name: "responsible", Prompt: "Who is responsible for this test?"},
			},
			Rules: service.ProcedureFieldRules,
		},
		DocTypeAnalysis: {
			DocType:  DocTypeAnalysis,
			Greeting: "Welcome to the DFMEA assistant. Create a failure analysis manually, generate one with AI, or view existing entries.",
			AIPrompt: "Describe the failure mode to analyze and I will draft it with AI.",
			Fields: []FieldPrompt{
				{Name: "genericFailure", Prompt: "What is the generic failure? (system or component)"},
				{Name: "failureMode", Prompt: "What is the potential failure mode?"},
				{Name: "cause", Prompt: "What is the potential cause or effect of the failure?"},
				{Name: "severity", Prompt: "On a scale of 1-10, what is the Severity?", Rating: true},
				{Name: "occurrence", Prompt: "What is the Occurrence rating (1-10)?", Rating: true},
				{Name: "detection", Prompt: "What is the Detection rating (1-10)?", Rating: true},
			},
			Links: []LinkPrompt{
				{
					Name:   "prevention",
					Offer:  "Would you like to add a prevention control (EDPS norm)?",
					Yes:    "Yes, link EDPS norm",
					No:     "No, skip prevention control",
					Linked: "Linked EDPS norm: %s.",
				},
				{
					Name:   "detection",
					Offer:  "Would you like to add a detection control (DVP test)?",
					Yes:    "Yes, link DVP test",
					No:     "No, skip detection control",
					Linked: "Linked DVP test: %s.",
				},
			},
			LinkAfter: 3,
			Rules:     service.AnalysisFieldRules,
		},
	}
}

// session state is guarded by its own mutex; two messages racing on one
// session serialize instead of interleaving transitions.
type session struct {
	id   string
	flow Flow

	mu    sync.Mutex
	state State
}

// Reply is what one wizard round produces for the client.
type Reply struct {
	SessionID    string            `json:"sessionId"`
	Step         Step              `json:"step"`
	Messages     []string          `json:"messages"`
	QuickReplies []string          `json:"quickReplies,omitempty"`
	Draft        map[string]string `json:"draft,omitempty"`
	SavedID      string            `json:"savedId,omitempty"`
}

// Manager holds live wizard sessions and executes transition effects against
// the document services. Sessions are in-memory only; a restart forgets them.
type Manager struct {
	flows      map[DocType]Flow
	sai        *service.SAIClient
	norms      *service.NormService
	procedures *service.ProcedureService
	analyses   *service.AnalysisService
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(
	sai *service.SAIClient,
	norms *service.NormService,
	procedures *service.ProcedureService,
	analyses *service.AnalysisService,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		flows:      Flows(),
		sai:        sai,
		norms:      norms,
		procedures: procedures,
		analyses:   analyses,
		logger:     logger,
		sessions:   map[string]*session{},
	}
}

// Start opens a session for the given document type.
func (m *Manager) Start(ctx context.Context, docType DocType) (*Reply, error) {
	flow, ok := m.flows[docType]
	if !ok {
		return nil, fmt.Errorf("unknown document type: %s", docType)
	}

	sess := &session{id: uuid.NewString(), flow: flow, state: NewState()}
	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	reply := &Reply{SessionID: sess.id, Step: sess.state.Step}
	m.runEffects(ctx, sess, flow.Opening(), reply)
	return reply, nil
}

// Message advances a session by one user input.
func (m *Manager) Message(ctx context.Context, sessionID, text string) (*Reply, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, service.ErrNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state, effects := Transition(sess.flow, sess.state, text)
	sess.state = state

	reply := &Reply{SessionID: sess.id}
	m.runEffects(ctx, sess, effects, reply)
	reply.Step = sess.state.Step
	reply.Draft = sess.state.Draft
	return reply, nil
}

// runEffects executes transition effects in order. GenerateDraft and
// SaveDraft can themselves produce follow-up transitions (AI result merge,
// save failure bounce-back), which keeps the machine itself free of I/O.
func (m *Manager) runEffects(ctx context.Context, sess *session, effects []Effect, reply *Reply) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case Say:
			reply.Messages = append(reply.Messages, e.Text)
		case Suggest:
			reply.QuickReplies = e.Replies
		case ListExisting:
			reply.Messages = append(reply.Messages, m.listExisting(ctx, sess.flow.DocType))
		case ListLinkTargets:
			m.listLinkTargets(ctx, sess, e.Link, reply)
		case MatchLinkTarget:
			m.matchLinkTarget(ctx, sess, e.Link, e.Input, reply)
		case GenerateDraft:
			m.generateDraft(ctx, sess, e.Description, reply)
		case SaveDraft:
			m.saveDraft(ctx, sess, e.Draft, reply)
		}
	}
}

// linkTarget is one selectable cross-reference candidate.
type linkTarget struct {
	id     string
	number string
	label  string
}

func (m *Manager) linkTargets(ctx context.Context, link string) ([]linkTarget, error) {
	if link == "prevention" {
		norms, err := m.norms.ListNorms(ctx)
		if err != nil {
			return nil, err
		}
		targets := make([]linkTarget, 0, len(norms))
		for _, n := range norms {
			targets = append(targets, linkTarget{id: n.ID, number: n.NormNumber, label: n.NormNumber + " - " + n.Title})
		}
		return targets, nil
	}
	procs, err := m.procedures.ListProcedures(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]linkTarget, 0, len(procs))
	for _, p := range procs {
		targets = append(targets, linkTarget{id: p.ID, number: p.ProcedureID, label: p.ProcedureID + " - " + p.TestName})
	}
	return targets, nil
}

func linkNouns(link string) (kind, selector, skip string) {
	if link == "prevention" {
		return "EDPS norms", "norm number", "Skip prevention control"
	}
	return "DVP test procedures", "procedure ID", "Skip detection control"
}

func (m *Manager) listLinkTargets(ctx context.Context, sess *session, link string, reply *Reply) {
	kind, selector, skip := linkNouns(link)

	targets, err := m.linkTargets(ctx, link)
	if err != nil {
		m.logger.Warn("Link target listing failed", zap.String("session_id", sess.id), zap.Error(err))
		reply.Messages = append(reply.Messages, fmt.Sprintf("Error fetching %s.", kind))
		reply.QuickReplies = []string{skip}
		return
	}
	if len(targets) == 0 {
		reply.Messages = append(reply.Messages, fmt.Sprintf("No %s found. Would you like to skip this step?", kind))
		reply.QuickReplies = []string{skip}
		return
	}

	text := fmt.Sprintf("Available %s:\n", kind)
	for i, t := range targets {
		if i == 5 {
			break
		}
		text += t.label + "\n"
	}
	text += fmt.Sprintf("Please type the %s you want to link.", selector)
	reply.Messages = append(reply.Messages, text)
}

func (m *Manager) matchLinkTarget(ctx context.Context, sess *session, link, input string, reply *Reply) {
	kind, _, skip := linkNouns(link)

	targets, err := m.linkTargets(ctx, link)
	if err != nil {
		m.logger.Warn("Link target lookup failed", zap.String("session_id", sess.id), zap.Error(err))
		reply.Messages = append(reply.Messages, fmt.Sprintf("Error fetching %s.", kind))
		reply.QuickReplies = []string{skip}
		return
	}

	for _, t := range targets {
		if (t.number != "" && strings.Contains(input, t.number)) || strings.Contains(input, t.id) {
			state, effects := ApplyLinkChoice(sess.flow, sess.state, t.id, t.label)
			sess.state = state
			m.runEffects(ctx, sess, effects, reply)
			return
		}
	}

	reply.Messages = append(reply.Messages, "Could not find that one. Please try again or skip.")
	reply.QuickReplies = []string{skip}
}

func (m *Manager) generateDraft(ctx context.Context, sess *session, description string, reply *Reply) {
	if !m.sai.Configured() {
		sess.state = NewState()
		reply.Messages = append(reply.Messages, "AI generation is not configured. Let's fill the fields manually instead.")
		reply.QuickReplies = initialReplies
		return
	}

	var raw []byte
	var err error
	switch sess.flow.DocType {
	case DocTypeProcedure:
		raw, err = m.sai.GenerateProcedure(ctx, description)
	case DocTypeAnalysis:
		raw, err = m.sai.GenerateAnalysis(ctx, description)
	default:
		raw, err = m.sai.GenerateNorm(ctx, description)
	}
	if err != nil {
		m.logger.Warn("AI draft generation failed", zap.String("session_id", sess.id), zap.Error(err))
		sess.state = NewState()
		reply.Messages = append(reply.Messages, fmt.Sprintf("AI generation failed: %v. You can create the document manually.", err))
		reply.QuickReplies = initialReplies
		return
	}

	fields := service.ExtractFields(raw, sess.flow.Rules)
	state, effects := ApplyDraft(sess.flow, sess.state, fields)
	sess.state = state
	m.runEffects(ctx, sess, effects, reply)
}

func (m *Manager) saveDraft(ctx context.Context, sess *session, draft map[string]string, reply *Reply) {
	id, err := m.persistDraft(ctx, sess.flow.DocType, draft)
	if err != nil {
		m.logger.Warn("Wizard save failed", zap.String("session_id", sess.id), zap.Error(err))
		sess.state.Step = StepConfirm
		reply.Messages = append(reply.Messages, fmt.Sprintf("Could not save the document: %v", err))
		reply.QuickReplies = []string{"Yes, save it", "No, cancel"}
		return
	}
	reply.SavedID = id
	reply.Messages = append(reply.Messages, fmt.Sprintf("Document saved with id %s.", id))
	reply.QuickReplies = []string{"Create another", "Done"}
}

func (m *Manager) persistDraft(ctx context.Context, docType DocType, draft map[string]string) (string, error) {
	switch docType {
	case DocTypeNorm:
		norm, err := m.norms.CreateNorm(ctx, service.CreateNormRequest{
			NormNumber:  draft["normNumber"],
			Title:       draft["title"],
			Description: draft["description"],
			Target:      draft["target"],
			CarPart:     draft["carPart"],
		})
		if err != nil {
			return "", err
		}
		return norm.ID, nil
	case DocTypeProcedure:
		proc, err := m.procedures.CreateProcedure(ctx, service.CreateProcedureRequest{
			ProcedureID:          draft["procedureId"],
			ProcedureType:        draft["procedureType"],
			PerformanceObjective: draft["performanceObjective"],
			TestName:             draft["testName"],
			AcceptanceCriteria:   draft["acceptanceCriteria"],
			Responsible:          draft["responsible"],
			ParameterRange:       draft["parameterRange"],
		})
		if err != nil {
			return "", err
		}
		return proc.ID, nil
	case DocTypeAnalysis:
		req := service.CreateAnalysisRequest{
			GenericFailure: draft["genericFailure"],
			FailureMode:    draft["failureMode"],
			Cause:          draft["cause"],
			CarPart:        draft["carPart"],
			Severity:       rating(draft, "severity"),
			Occurrence:     rating(draft, "occurrence"),
			Detection:      rating(draft, "detection"),
		}
		if id := draft["preventionId"]; id != "" {
			req.PreventionControl = &domain.PreventionControl{
				Type:        domain.ControlTypeEDPS,
				EDPSID:      id,
				Description: draft["preventionDescription"],
			}
		}
		if id := draft["detectionId"]; id != "" {
			req.DetectionControl = &domain.DetectionControl{
				Type:        domain.ControlTypeDVP,
				DVPID:       id,
				Description: draft["detectionDescription"],
			}
		}
		entry, err := m.analyses.CreateAnalysis(ctx, req)
		if err != nil {
			return "", err
		}
		return entry.ID, nil
	default:
		return "", fmt.Errorf("unknown document type: %s", docType)
	}
}

func (m *Manager) listExisting(ctx context.Context, docType DocType) string {
	switch docType {
	case DocTypeNorm:
		norms, err := m.norms.ListNorms(ctx)
		if err != nil {
			return "Could not fetch existing norms. Please try again."
		}
		if len(norms) == 0 {
			return "No existing norms found. Would you like to create one?"
		}
		text := fmt.Sprintf("Found %d existing norms:\n", len(norms))
		for i, n := range norms {
			if i == 5 {
				break
			}
			text += fmt.Sprintf("%s - %s\n", n.NormNumber, n.Title)
		}
		return text
	case DocTypeProcedure:
		procs, err := m.procedures.ListProcedures(ctx)
		if err != nil {
			return "Could not fetch existing procedures. Please try again."
		}
		if len(procs) == 0 {
			return "No existing procedures found. Would you like to create one?"
		}
		text := fmt.Sprintf("Found %d existing procedures:\n", len(procs))
		for i, p := range procs {
			if i == 5 {
				break
			}
			text += fmt.Sprintf("%s - %s\n", p.ProcedureID, p.TestName)
		}
		return text
	default:
		entries, err := m.analyses.ListAnalyses(ctx)
		if err != nil {
			return "Could not fetch existing analyses. Please try again."
		}
		if len(entries) == 0 {
			return "No existing failure analyses found. Would you like to create one?"
		}
		text := fmt.Sprintf("Found %d existing failure analyses:\n", len(entries))
		for i, e := range entries {
			if i == 5 {
				break
			}
			text += fmt.Sprintf("%s - %s (RPN %d)\n", e.GenericFailure, e.FailureMode, e.RPN)
		}
		return text
	}
}

func rating(draft map[string]string, name string) *int {
	value, ok := service.ExtractRating(draft, name)
	if !ok {
		return nil
	}
	return value
}
