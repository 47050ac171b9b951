package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The SAI templates answer in whatever shape and language the prompt author
// last settled on: sometimes a JSON object, sometimes that object wrapped in
// a response/output/result envelope, sometimes a JSON string containing JSON,
// often inside a markdown code fence, with field names drifting between
// English and Portuguese. Extraction is therefore an ordered list of named
// rules: for each target field the key aliases are tried in priority order,
// and a field nobody's alias matches is reported as not found rather than
// silently defaulted, so callers can tell a genuine empty value from an
// extraction miss.

// FieldRule names one target field and the upstream keys that may carry it.
type FieldRule struct {
	Name    string
	Aliases []string
}

// NormFieldRules extract an EDPS draft. Aliases mirror what the norm
// template has been seen to emit.
var NormFieldRules = []FieldRule{
	{Name: "normNumber", Aliases: []string{"normNumber", "numero_da_norma", "number", "numero"}},
	{Name: "title", Aliases: []string{"title", "titulo", "nome_da_norma", "name", "nome"}},
	{Name: "description", Aliases: []string{"description", "descricao", "descrição_da_norma", "procedimento", "content", "conteudo", "conteúdo"}},
	{Name: "target", Aliases: []string{"target", "objetivo", "target_da_norma", "objective", "meta"}},
}

// ProcedureFieldRules extract a DVP draft.
var ProcedureFieldRules = []FieldRule{
	{Name: "procedureId", Aliases: []string{"number_item", "procedureId", "procedure_id", "id", "numero"}},
	{Name: "procedureType", Aliases: []string{"procedureType", "procedure_type", "tipo", "type"}},
	{Name: "performanceObjective", Aliases: []string{"performance_objective", "performanceObjective", "objective", "objetivo"}},
	{Name: "testName", Aliases: []string{"teste_name_procedure", "testName", "test_name", "nome_do_teste", "name", "nome"}},
	{Name: "acceptanceCriteria", Aliases: []string{"acceptance_criteria", "acceptanceCriteria", "criterios", "criteria", "criterios_de_aceitacao", "critérios_de_aceitação"}},
	{Name: "responsible", Aliases: []string{"teste_responsabillity", "teste_responsibility", "responsible", "responsavel", "responsável", "responsable"}},
	{Name: "parameterRange", Aliases: []string{"parameterRange", "parameter_range", "faixa", "range", "faixa_de_parametros"}},
}

// AnalysisFieldRules extract a DFMEA draft. "Potencial" with one t is the
// spelling the SAI template actually uses.
var AnalysisFieldRules = []FieldRule{
	{Name: "genericFailure", Aliases: []string{"Generic_failure", "generic_failure", "genericFailure", "falha_generica", "falha_genérica", "system", "sistema", "component", "componente"}},
	{Name: "failureMode", Aliases: []string{"Potencial_failure_modes", "Potential_failure_modes", "potential_failure_modes", "failureMode", "failure_mode", "modo_de_falha", "mode", "falha"}},
	{Name: "cause", Aliases: []string{"Potencial_effect(s)_of_failure", "Potential_effect(s)_of_failure", "Potential_effects_of_failure", "potential_effects_of_failure", "cause", "causa", "rootCause", "root_cause", "causa_raiz", "effects", "effect"}},
	{Name: "severity", Aliases: []string{"severity", "severidade", "severidad"}},
	{Name: "occurrence", Aliases: []string{"occurrence", "ocorrencia", "ocorrência", "ocurrencia"}},
	{Name: "detection", Aliases: []string{"detection", "deteccao", "detecção", "deteccion"}},
}

// ExtractFields applies the rules to a raw template response. The result maps
// field name to the extracted string value; a field absent from the map was
// not found under any alias.
func ExtractFields(raw []byte, rules []FieldRule) map[string]string {
	payload, ok := decodePayload(raw)
	if !ok {
		return map[string]string{}
	}

	out := make(map[string]string, len(rules))
	for _, rule := range rules {
		for _, alias := range rule.Aliases {
			value, present := payload[alias]
			if !present {
				continue
			}
			text, ok := stringify(value)
			if !ok {
				continue
			}
			out[rule.Name] = text
			break
		}
	}
	return out
}

// ExtractRating parses an extracted rating value into the 1-10 scale. The
// second return distinguishes "no such field / not a number" from a value.
func ExtractRating(fields map[string]string, name string) (*int, bool) {
	text, present := fields[name]
	if !present {
		return nil, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, false
	}
	return &n, true
}

// decodePayload normalizes the raw response into one key/value object:
// strips markdown fences, parses JSON-in-a-string, and unwraps the
// response/output/result envelope layers.
func decodePayload(raw []byte) (map[string]any, bool) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		// Not JSON at all; maybe an object inside a code fence.
		if err := json.Unmarshal([]byte(stripFences(string(raw))), &value); err != nil {
			return nil, false
		}
	}

	for depth := 0; depth < 4; depth++ {
		switch v := value.(type) {
		case string:
			var inner any
			if err := json.Unmarshal([]byte(stripFences(v)), &inner); err != nil {
				return nil, false
			}
			value = inner
		case map[string]any:
			wrapped := false
			for _, key := range []string{"response", "output", "result"} {
				if inner, present := v[key]; present && inner != nil {
					value = inner
					wrapped = true
					break
				}
			}
			if !wrapped {
				return v, true
			}
		default:
			return nil, false
		}
	}

	obj, ok := value.(map[string]any)
	return obj, ok
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// stringify keeps scalar values and rejects nested structures; a rule that
// lands on an object has matched the wrong alias.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return fmt.Sprintf("%v", v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
