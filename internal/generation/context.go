package generation

// PromptContext carries everything the text-completion prompt needs for a
// social media post. Missing optional answers map to empty strings or false,
// never to nils propagated into prompts.
type PromptContext struct {
	Goal          string
	Audience      []string
	Platform      string
	ContentFormat []string
	Volume        string
	Description   string

	HasEvent      bool
	EventDetails  string
	EventType     string
	EventDate     string
	EventPlace    string
	EventAudience string

	NarrativeStyle string

	HasNGOInfo     bool
	NGOName        string
	NGODescription string
	NGOActivities  string
	NGOContact     string
}

// PlanPromptContext carries the answers of the content-plan dialog.
type PlanPromptContext struct {
	Period    string
	Frequency string
	Topics    string
	Details   string
}

// EditPromptContext carries a generated text plus editing instructions.
type EditPromptContext struct {
	TextToEdit string
	Details    string

	HasNGOInfo     bool
	NGOName        string
	NGODescription string
	NGOActivities  string
	NGOContact     string
}

// ContextFromAnswers maps accumulated dialog answers into a PromptContext.
// The field mapping is explicit so a new answer key can never leak into
// prompts unreviewed.
func ContextFromAnswers(answers map[string]any) PromptContext {
	return PromptContext{
		Goal:          stringAnswer(answers, "goal"),
		Audience:      listAnswer(answers, "audience"),
		Platform:      stringAnswer(answers, "platform"),
		ContentFormat: listAnswer(answers, "format"),
		Volume:        stringAnswer(answers, "volume"),
		Description:   stringAnswer(answers, "description"),

		HasEvent:      boolAnswer(answers, "has_event"),
		EventDetails:  stringAnswer(answers, "event_details"),
		EventType:     stringAnswer(answers, "event_type"),
		EventDate:     stringAnswer(answers, "event_date"),
		EventPlace:    stringAnswer(answers, "event_place"),
		EventAudience: stringAnswer(answers, "event_audience"),

		NarrativeStyle: stringAnswer(answers, "narrative_style"),

		HasNGOInfo:     boolAnswer(answers, "has_ngo_info"),
		NGOName:        stringAnswer(answers, "ngo_name"),
		NGODescription: stringAnswer(answers, "ngo_description"),
		NGOActivities:  stringAnswer(answers, "ngo_activities"),
		NGOContact:     stringAnswer(answers, "ngo_contact"),
	}
}

// PlanContextFromAnswers maps content-plan dialog answers.
func PlanContextFromAnswers(answers map[string]any) PlanPromptContext {
	return PlanPromptContext{
		Period:    stringAnswer(answers, "period"),
		Frequency: stringAnswer(answers, "frequency"),
		Topics:    stringAnswer(answers, "topics"),
		Details:   stringAnswer(answers, "details"),
	}
}

func stringAnswer(answers map[string]any, key string) string {
	v, _ := answers[key].(string)
	return v
}

func listAnswer(answers map[string]any, key string) []string {
	v, _ := answers[key].([]string)
	return v
}

func boolAnswer(answers map[string]any, key string) bool {
	v, _ := answers[key].(bool)
	return v
}
