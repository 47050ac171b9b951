package wizard

import "strings"

// Intent is the coarse meaning of a free-text input. Everything fuzzy about
// the conversation is confined to ClassifyIntent; the state machine only ever
// sees one of these values.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentCreate
	IntentUseAI
	IntentView
	IntentYes
	IntentNo
)

// Keyword lists carry both English and Portuguese because the original forms
// were used bilingually. Order matters: AI beats create so "criar com ia"
// takes the shortcut.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentUseAI, []string{"use ai", " ai", "ai ", "ia", "🤖"}},
	{IntentCreate, []string{"create", "new", "criar", "another", "outro", "start over"}},
	{IntentView, []string{"view", "existing", "ver", "list"}},
	{IntentYes, []string{"yes", "save", "sim", "review", "revisar"}},
	{IntentNo, []string{"no, cancel", "cancel", "no", "não", "nao", "skip", "pular"}},
}

func ClassifyIntent(input string) Intent {
	text := " " + strings.ToLower(strings.TrimSpace(input)) + " "
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			needle := kw
			if !strings.Contains(needle, " ") {
				needle = " " + needle + " "
			}
			if strings.Contains(text, needle) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}
