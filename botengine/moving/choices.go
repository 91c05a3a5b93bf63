package moving

import "strings"

// Conversation steps.
const (
	StepWelcome          = "welcome"
	StepCargo            = "cargo"
	StepVolume           = "volume"
	StepPickupCount      = "pickup_count"
	StepAddrFrom         = "addr_from"
	StepFloorFrom        = "floor_from"
	StepAddrFrom2        = "addr_from_2"
	StepFloorFrom2       = "floor_from_2"
	StepAddrFrom3        = "addr_from_3"
	StepFloorFrom3       = "floor_from_3"
	StepConfirmAddresses = "confirm_addresses"
	StepAddrTo           = "addr_to"
	StepFloorTo          = "floor_to"
	StepDate             = "date"
	StepSpecificDate     = "specific_date"
	StepTimeSlot         = "time_slot"
	StepExactTime        = "exact_time"
	StepPhotoMenu        = "photo_menu"
	StepPhotoWait        = "photo_wait"
	StepExtras           = "extras"
	StepEstimate         = "estimate"
	StepDone             = "done"
)

// User intents recognized in addition to step answers.
const (
	IntentReset   = "reset"
	IntentConfirm = "done_photos"
	IntentDecline = "no"
	IntentNone    = ""
)

// ValueNone marks "no extras / nothing to add" in stored lead data.
const ValueNone = "none"

var intentPatterns = map[string][]string{
	IntentReset: {
		"заново", "сначала", "рестарт", "перезапуск", "/start", "start",
		"reset", "restart",
		"התחל", "מחדש", "ריסט",
	},
	IntentConfirm: {
		"готово", "всё", "все", "закончено", "да", "ага",
		"done", "finish", "finished", "yes", "yep",
		"סיימתי", "גמרתי", "סיום", "סיימנו", "כן",
	},
	IntentDecline: {
		"нет", "неа", "не нужно",
		"no", "nope", "skip",
		"לא",
	},
}

// DetectIntent matches the whole (trimmed, lowercased) message against the
// intent vocabularies of all languages. Reset wins over confirm, confirm
// over decline, mirroring pattern priority.
func DetectIntent(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return IntentNone
	}
	for _, intent := range []string{IntentReset, IntentConfirm, IntentDecline} {
		for _, p := range intentPatterns[intent] {
			if t == p {
				return intent
			}
		}
	}
	return IntentNone
}

// Menu choice mappings, keyed by the digit the user sends.

var dateChoices = map[string]string{
	"1": "tomorrow",
	"2": "2_3_days",
	"3": "this_week",
	"4": "specific",
}

var timeSlotChoices = map[string]string{
	"1": "morning",
	"2": "afternoon",
	"3": "evening",
	"4": "exact",
	"5": "flexible",
}

var volumeChoices = map[string]string{
	"1": "small",
	"2": "medium",
	"3": "large",
	"4": "xl",
}

var extraChoices = map[string]string{
	"1": "loaders",
	"2": "assembly",
	"3": "packing",
	"4": ValueNone,
}
