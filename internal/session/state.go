package session

// State is the screen the controller is currently on.
type State string

const (
	StateLanding             State = "landing"
	StateAuthenticating      State = "authenticating"
	StateDashboard           State = "dashboard"
	StateTakingQuestionnaire State = "taking-questionnaire"
	StateReviewingResult     State = "reviewing-result"
	StateTrackingMood        State = "tracking-mood"
	StateTrackingSleep       State = "tracking-sleep"
	StateReflecting          State = "reflecting"
	StateChatting            State = "chatting"
	StateViewingPlan         State = "viewing-plan"
	StateViewingHistory      State = "viewing-history"
)

// action identifies a user-triggered submission serialized by a busy flag.
type action string

const (
	actionAuth           action = "auth"
	actionSaveMood       action = "save-mood"
	actionSaveSleep      action = "save-sleep"
	actionSaveReflection action = "save-reflection"
	actionChat           action = "chat"
)

// submitAction keys questionnaire submissions per instrument kind.
func submitAction(kind string) action { return action("submit:" + kind) }
