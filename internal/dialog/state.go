package dialog

import "github.com/mkuznetsova/dobrobot/internal/session"

// Dialog states. The set is closed: the transition table in machine.go maps
// every state to its accepted inputs, so an unknown state or token can never
// advance a conversation.
const (
	StateIdle = session.StateIdle

	// Questionnaire flow.
	StateGoal         session.State = "goal"
	StateAudience     session.State = "audience"
	StatePlatform     session.State = "platform"
	StateFormat       session.State = "format"
	StateHasEvent     session.State = "has_event"
	StateEventDetails session.State = "event_details"
	StateVolume       session.State = "volume"
	StateDescription  session.State = "description"
	StateConfirm      session.State = "confirm"
	StateEditText     session.State = "edit_text"

	// Wizard flow.
	StateWizardMode          session.State = "wizard_mode"
	StateWizardNGO           session.State = "wizard_ngo"
	StateWizardEventType     session.State = "wizard_event_type"
	StateWizardEventDate     session.State = "wizard_event_date"
	StateWizardEventPlace    session.State = "wizard_event_place"
	StateWizardEventAudience session.State = "wizard_event_audience"
	StateWizardEventDetails  session.State = "wizard_event_details"
	StateWizardFreeText      session.State = "wizard_free_text"
	StateWizardStyle         session.State = "wizard_style"
	StateWizardPlatform      session.State = "wizard_platform"
	StateWizardTextResult    session.State = "wizard_text_result"
	StateWizardTextEdit      session.State = "wizard_text_edit"
	StateWizardImageSource   session.State = "wizard_image_source"
	StateWizardImagePrompt   session.State = "wizard_image_prompt"
	StateWizardImageUpload   session.State = "wizard_image_upload"
	StateWizardFinalConfirm  session.State = "wizard_final_confirm"

	// Organization profile flow.
	StateOrgMenu        session.State = "org_menu"
	StateOrgName        session.State = "org_name"
	StateOrgDescription session.State = "org_description"
	StateOrgActivities  session.State = "org_activities"
	StateOrgContact     session.State = "org_contact"
	StateOrgConfirm     session.State = "org_confirm"

	// Content plan flow.
	StatePlanPeriod          session.State = "plan_period"
	StatePlanCustomPeriod    session.State = "plan_custom_period"
	StatePlanFrequency       session.State = "plan_frequency"
	StatePlanCustomFrequency session.State = "plan_custom_frequency"
	StatePlanTopics          session.State = "plan_topics"
	StatePlanDetails         session.State = "plan_details"
)

// Answer keys used in session.Answers.
const (
	keyGoal          = "goal"
	keyAudience      = "audience"
	keyPlatform      = "platform"
	keyFormat        = "format"
	keyHasEvent      = "has_event"
	keyEventDetails  = "event_details"
	keyVolume        = "volume"
	keyDescription   = "description"
	keyGeneratedText = "generated_text"

	keyWizardMode    = "wizard_mode"
	keyHasNGOInfo    = "has_ngo_info"
	keyEventType     = "event_type"
	keyEventDate     = "event_date"
	keyEventPlace    = "event_place"
	keyEventAudience = "event_audience"
	keyStyle         = "narrative_style"
	keyImage         = "image"

	keyOrgName        = "org_name"
	keyOrgDescription = "org_description"
	keyOrgActivities  = "org_activities"
	keyOrgContact     = "org_contact"

	keyPlanPeriod    = "period"
	keyPlanFrequency = "frequency"
	keyPlanTopics    = "topics"
	keyPlanDetails   = "details"
)
