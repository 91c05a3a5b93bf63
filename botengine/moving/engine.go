package moving

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moveline/leadgate/domains/session"
)

// BotType identifies this flow on sessions and leads.
const BotType = "moving_v1"

const inboundMaxLen = 2000

// freeTextSteps are the steps whose answers are long enough to trust for
// language auto-detection.
var freeTextSteps = map[string]struct{}{
	StepWelcome:      {},
	StepCargo:        {},
	StepAddrFrom:     {},
	StepFloorFrom:    {},
	StepAddrFrom2:    {},
	StepFloorFrom2:   {},
	StepAddrFrom3:    {},
	StepFloorFrom3:   {},
	StepAddrTo:       {},
	StepFloorTo:      {},
	StepExtras:       {},
	StepSpecificDate: {},
}

// addressSteps accept shared map locations.
var addressSteps = map[string]string{
	StepAddrFrom:  "pickup_1",
	StepAddrFrom2: "pickup_2",
	StepAddrFrom3: "pickup_3",
	StepAddrTo:    "delivery",
}

const languageSwitchConfidence = 0.5

// Options carries per-tenant knobs resolved by the caller.
type Options struct {
	// OperatorPhone, when set, is advertised in the welcome block.
	OperatorPhone string
	// EstimateDisplayEnabled gates showing the price range to the client.
	// The estimate is computed and stored either way.
	EstimateDisplayEnabled bool
	// Now overrides the clock, used by tests. Zero means time.Now in the
	// service timezone.
	Now time.Time
}

// Engine drives the moving-request conversation over a session.State.
// It is stateless; all conversation data lives on the state.
type Engine struct {
	opts Options
}

var serviceLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// NewEngine returns an engine configured for one tenant.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) now() time.Time {
	if !e.opts.Now.IsZero() {
		return e.opts.Now
	}
	return time.Now().In(serviceLocation)
}

// StartSession resets the state to a fresh request and returns the
// welcome block.
func (e *Engine) StartSession(st *session.State) string {
	lang := st.Language
	if lang == "" {
		lang = LangRU
	}
	st.BotType = BotType
	st.Step = StepCargo
	st.Language = lang
	st.Data = session.LeadData{}

	parts := []string{GetText("welcome", lang)}
	if e.opts.OperatorPhone != "" {
		parts = append(parts, FormatText("welcome_contact", lang, map[string]string{"phone": e.opts.OperatorPhone}))
	}
	parts = append(parts, GetText("hint_can_reset", lang), "", GetText("q_cargo", lang))
	return strings.Join(parts, "\n")
}

// HandleText advances the conversation with a text answer. done is true
// once the request is confirmed and ready to finalize.
func (e *Engine) HandleText(st *session.State, text string) (reply string, done bool) {
	msg, err := SanitizeInput(text, inboundMaxLen)
	if err != nil {
		return GetText("err_rejected_input", e.lang(st)), false
	}

	if _, free := freeTextSteps[st.Step]; free {
		if lang, conf := DetectLanguage(msg); conf >= languageSwitchConfidence && lang != "" && lang != st.Language {
			st.Language = lang
		}
	}

	intent := DetectIntent(msg)
	if intent == IntentReset {
		return e.StartSession(st), false
	}

	switch st.Step {
	case StepWelcome, "":
		return e.StartSession(st), false
	case StepCargo:
		return e.handleCargo(st, msg), false
	case StepVolume:
		return e.handleVolume(st, msg), false
	case StepPickupCount:
		return e.handlePickupCount(st, msg), false
	case StepConfirmAddresses:
		return e.handleConfirmAddresses(st, msg), false
	case StepAddrFrom, StepAddrFrom2, StepAddrFrom3:
		return e.handlePickupAddr(st, msg), false
	case StepFloorFrom, StepFloorFrom2, StepFloorFrom3:
		return e.handlePickupFloor(st, msg), false
	case StepAddrTo:
		return e.handleAddrTo(st, msg), false
	case StepFloorTo:
		return e.handleFloorTo(st, msg), false
	case StepDate:
		return e.handleDate(st, msg), false
	case StepSpecificDate:
		return e.handleSpecificDate(st, msg), false
	case StepTimeSlot:
		return e.handleTimeSlot(st, msg), false
	case StepExactTime:
		return e.handleExactTime(st, msg), false
	case StepPhotoMenu:
		return e.handlePhotoMenu(st, msg, intent), false
	case StepPhotoWait:
		return e.handlePhotoWait(st, intent), false
	case StepExtras:
		return e.handleExtras(st, msg, intent), false
	case StepEstimate:
		return e.handleEstimate(st, msg, intent)
	case StepDone:
		return GetText("info_already_done", e.lang(st)), false
	}
	// Unknown step in stored state: restart rather than dead-end the chat.
	return e.StartSession(st), false
}

func (e *Engine) lang(st *session.State) string {
	if st.Language == "" {
		return LangRU
	}
	return st.Language
}

func (e *Engine) handleCargo(st *session.State, msg string) string {
	lang := e.lang(st)
	if LooksTooShort(msg, 5) {
		return GetText("err_cargo_too_short", lang)
	}
	st.Data.CargoDescription = msg
	st.Data.CargoRaw = msg
	st.Data.CargoItems = ExtractItems(msg)

	if vol, ok := VolumeFromRooms(msg); ok {
		st.Data.VolumeCategory = vol
		st.Data.VolumeFromRooms = true
		st.Step = StepPickupCount
		return GetText("q_pickup_count", lang)
	}
	if vol, ok := VolumeFromItems(st.Data.CargoItems); ok {
		st.Data.VolumeCategory = vol
		st.Data.VolumeFromItems = true
		st.Step = StepPickupCount
		return GetText("q_pickup_count", lang)
	}
	st.Step = StepVolume
	return GetText("q_volume", lang)
}

func (e *Engine) handleVolume(st *session.State, msg string) string {
	lang := e.lang(st)
	vol, ok := volumeChoices[strings.TrimSpace(msg)]
	if !ok {
		return GetText("err_volume_choice", lang)
	}
	st.Data.VolumeCategory = vol
	st.Step = StepPickupCount
	return GetText("q_pickup_count", lang)
}

func (e *Engine) handlePickupCount(st *session.State, msg string) string {
	lang := e.lang(st)
	n, err := strconv.Atoi(strings.TrimSpace(msg))
	if err != nil || n < 1 || n > 3 {
		return GetText("err_pickup_count", lang)
	}
	st.Data.PickupCount = n
	st.Data.Pickups = nil
	st.Step = StepAddrFrom
	if n > 1 {
		return FormatText("q_addr_from_n", lang, map[string]string{"n": "1"})
	}
	return GetText("q_addr_from", lang)
}

func (e *Engine) handleConfirmAddresses(st *session.State, msg string) string {
	lang := e.lang(st)
	switch strings.TrimSpace(msg) {
	case "1":
		st.Data.PickupCount = 1
		st.Data.Pickups = nil
		st.Step = StepPickupCount
		return GetText("q_pickup_count", lang)
	case "2":
		st.Data.PickupCount = 1
		st.Data.Pickups = []session.Pickup{{Addr: st.Data.AddrFrom, Floor: "—"}}
		st.Data.SetExt("landing_addresses_kept", "true")
		if st.Data.GetExt("landing_date_parsed") == "true" {
			st.Step = StepTimeSlot
			return GetText("q_time_slot", lang)
		}
		st.Step = StepDate
		return GetText("q_date", lang)
	}
	return GetText("err_confirm_addresses", lang)
}

func (e *Engine) handlePickupAddr(st *session.State, msg string) string {
	lang := e.lang(st)
	if LooksTooShort(msg, 5) {
		return GetText("err_addr_too_short", lang)
	}
	switch st.Step {
	case StepAddrFrom:
		st.Data.AddrFrom = msg
		st.Step = StepFloorFrom
		if st.Data.PickupCount > 1 {
			return FormatText("q_floor_from_n", lang, map[string]string{"n": "1"})
		}
		return GetText("q_floor_from", lang)
	case StepAddrFrom2:
		st.Data.PendingAddr = msg
		st.Step = StepFloorFrom2
		return FormatText("q_floor_from_n", lang, map[string]string{"n": "2"})
	default: // StepAddrFrom3
		st.Data.PendingAddr = msg
		st.Step = StepFloorFrom3
		return FormatText("q_floor_from_n", lang, map[string]string{"n": "3"})
	}
}

func (e *Engine) handlePickupFloor(st *session.State, msg string) string {
	lang := e.lang(st)
	if LooksTooShort(msg, 2) {
		return GetText("err_floor_too_short", lang)
	}
	switch st.Step {
	case StepFloorFrom:
		st.Data.FloorFrom = msg
		st.Data.Pickups = append(st.Data.Pickups, session.Pickup{Addr: st.Data.AddrFrom, Floor: msg})
		if st.Data.PickupCount >= 2 {
			st.Step = StepAddrFrom2
			return FormatText("q_addr_from_n", lang, map[string]string{"n": "2"})
		}
	case StepFloorFrom2:
		st.Data.Pickups = append(st.Data.Pickups, session.Pickup{Addr: st.Data.PendingAddr, Floor: msg})
		st.Data.PendingAddr = ""
		if st.Data.PickupCount >= 3 {
			st.Step = StepAddrFrom3
			return FormatText("q_addr_from_n", lang, map[string]string{"n": "3"})
		}
	default: // StepFloorFrom3
		st.Data.Pickups = append(st.Data.Pickups, session.Pickup{Addr: st.Data.PendingAddr, Floor: msg})
		st.Data.PendingAddr = ""
	}
	st.Step = StepAddrTo
	return GetText("q_addr_to", lang)
}

func (e *Engine) handleAddrTo(st *session.State, msg string) string {
	lang := e.lang(st)
	if LooksTooShort(msg, 5) {
		return GetText("err_addr_too_short", lang)
	}
	st.Data.AddrTo = msg
	st.Step = StepFloorTo
	return GetText("q_floor_to", lang)
}

func (e *Engine) handleFloorTo(st *session.State, msg string) string {
	lang := e.lang(st)
	if LooksTooShort(msg, 2) {
		return GetText("err_floor_too_short", lang)
	}
	st.Data.FloorTo = msg
	if st.Data.GetExt("landing_date_parsed") == "true" {
		st.Step = StepTimeSlot
		return GetText("q_time_slot", lang)
	}
	st.Step = StepDate
	return GetText("q_date", lang)
}

func (e *Engine) handleDate(st *session.State, msg string) string {
	lang := e.lang(st)
	now := e.now()
	choice := dateChoices[strings.TrimSpace(msg)]
	switch choice {
	case "tomorrow":
		return e.setMoveDate(st, now.AddDate(0, 0, 1), "tomorrow")
	case "2_3_days":
		return e.setMoveDate(st, now.AddDate(0, 0, 2), "2_3_days")
	case "this_week":
		return e.setMoveDate(st, now.AddDate(0, 0, 3), "this_week")
	case "specific":
		st.Step = StepSpecificDate
		return GetText("q_specific_date", lang)
	}
	// Free text like "завтра" or "в пятницу" is accepted here too.
	if d, err := ParseDate(msg, now); err == nil {
		return e.setMoveDate(st, d, "natural")
	}
	return GetText("err_date_choice", lang)
}

func (e *Engine) setMoveDate(st *session.State, d time.Time, label string) string {
	st.Data.MoveDate = d.Format("2006-01-02")
	st.Data.MoveDateLabel = label
	st.Step = StepTimeSlot
	return GetText("q_time_slot", e.lang(st))
}

func (e *Engine) handleSpecificDate(st *session.State, msg string) string {
	lang := e.lang(st)
	d, err := ParseDate(msg, e.now())
	if err != nil {
		switch {
		case errors.Is(err, ErrDateInvalid):
			return GetText("err_date_invalid", lang)
		case errors.Is(err, ErrDateTooSoon):
			return GetText("err_date_too_soon", lang)
		case errors.Is(err, ErrDateTooFar):
			return GetText("err_date_too_far", lang)
		}
		return GetText("err_date_format", lang)
	}
	return e.setMoveDate(st, d, "specific")
}

func (e *Engine) handleTimeSlot(st *session.State, msg string) string {
	lang := e.lang(st)
	choice := strings.TrimSpace(msg)
	if choice == "4" {
		st.Step = StepExactTime
		return GetText("q_exact_time", lang)
	}
	slot, ok := timeSlotChoices[choice]
	if !ok {
		return GetText("err_time_slot_choice", lang)
	}
	st.Data.TimeSlot = slot
	st.Data.TimeWindow = slot
	return e.askPhotoMenu(st)
}

func (e *Engine) handleExactTime(st *session.State, msg string) string {
	lang := e.lang(st)
	hhmm, ok := ParseExactTime(msg)
	if !ok {
		return GetText("err_exact_time_format", lang)
	}
	st.Data.TimeSlot = "exact"
	st.Data.ExactTime = hhmm
	st.Data.TimeWindow = "exact:" + hhmm
	return e.askPhotoMenu(st)
}

func (e *Engine) askPhotoMenu(st *session.State) string {
	st.Step = StepPhotoMenu
	if st.Data.VolumeFromRooms {
		return GetText("q_photo_menu_rooms", e.lang(st))
	}
	return GetText("q_photo_menu", e.lang(st))
}

func (e *Engine) handlePhotoMenu(st *session.State, msg, intent string) string {
	lang := e.lang(st)
	switch {
	case strings.TrimSpace(msg) == "1":
		st.Data.HasPhotos = true
		st.Step = StepPhotoWait
		return GetText("q_photo_wait", lang)
	case strings.TrimSpace(msg) == "2" || intent == IntentDecline:
		st.Step = StepExtras
		return GetText("q_extras", lang)
	}
	return GetText("err_photo_menu", lang)
}

func (e *Engine) handlePhotoWait(st *session.State, intent string) string {
	lang := e.lang(st)
	if intent == IntentConfirm {
		if st.Data.PhotoCount == 0 {
			st.Data.HasPhotos = false
		}
		st.Step = StepExtras
		return GetText("q_extras", lang)
	}
	return GetText("info_photo_wait", lang)
}

func (e *Engine) handleExtras(st *session.State, msg, intent string) string {
	lang := e.lang(st)
	choices, details := ParseExtrasInput(msg)

	if len(choices) > 0 {
		if containsChoice(choices, "4") {
			st.Data.Extras = nil
			if details == "" {
				st.Data.DetailsFree = ValueNone
			} else {
				st.Data.DetailsFree = details
			}
		} else {
			st.Data.Extras = mapExtraChoices(choices)
			st.Data.DetailsFree = details
		}
		return e.transitionToEstimate(st)
	}

	if LooksTooShort(msg, 2) {
		if intent == IntentDecline {
			st.Data.Extras = nil
			st.Data.DetailsFree = ValueNone
			return e.transitionToEstimate(st)
		}
		return GetText("err_extras_empty", lang)
	}

	st.Data.DetailsFree = details
	return e.transitionToEstimate(st)
}

func (e *Engine) transitionToEstimate(st *session.State) string {
	lang := e.lang(st)
	st.Step = StepEstimate

	pickupFloors := make([]FloorInfo, 0, len(st.Data.Pickups))
	for _, p := range st.Data.Pickups {
		f, elev := ParseFloorInfo(p.Floor)
		pickupFloors = append(pickupFloors, FloorInfo{Floor: f, HasElevator: elev})
	}
	if len(pickupFloors) == 0 && st.Data.FloorFrom != "" {
		f, elev := ParseFloorInfo(st.Data.FloorFrom)
		pickupFloors = append(pickupFloors, FloorInfo{Floor: f, HasElevator: elev})
	}
	fTo, elevTo := ParseFloorInfo(st.Data.FloorTo)

	route := ClassifyRoute(st.Data.AddrFrom, st.Data.AddrTo)
	st.Data.Route = &route

	extraPickups := st.Data.PickupCount - 1
	if extraPickups < 0 {
		extraPickups = 0
	}

	est := ComputeEstimate(EstimateInput{
		VolumeCategory: st.Data.VolumeCategory,
		Items:          st.Data.CargoItems,
		PickupFloors:   pickupFloors,
		FloorTo:        FloorInfo{Floor: fTo, HasElevator: elevTo},
		ExtraPickups:   extraPickups,
		Extras:         st.Data.Extras,
		Route:          route,
		DistanceFactor: DistanceFactor(st.Data.GeoPoints),
	})

	// A long description with nothing recognized and no volume answer is
	// too thin to price honestly.
	suppressed := len([]rune(st.Data.CargoRaw)) > 30 &&
		len(st.Data.CargoItems) == 0 &&
		st.Data.VolumeCategory == ""
	if suppressed {
		st.Data.EstimateSuppressed = true
		st.Data.Estimate = &session.Estimate{Currency: est.Currency, Breakdown: est.Breakdown}
		return GetText("estimate_no_price", lang)
	}

	st.Data.Estimate = &est
	logrus.WithFields(logrus.Fields{
		"tenant_id": st.TenantID,
		"lead_id":   st.LeadID,
		"min":       est.Min,
		"max":       est.Max,
		"band":      route.Band,
	}).Info("[BOT_ENGINE] estimate_computed")

	if !e.opts.EstimateDisplayEnabled {
		st.Data.EstimateDisplayDisabled = true
		return GetText("estimate_no_price", lang)
	}
	return FormatText("estimate_summary", lang, map[string]string{
		"min_price": strconv.Itoa(est.Min),
		"max_price": strconv.Itoa(est.Max),
	})
}

func (e *Engine) handleEstimate(st *session.State, msg, intent string) (string, bool) {
	lang := e.lang(st)
	choice := strings.TrimSpace(msg)
	switch {
	case choice == "1" || intent == IntentConfirm:
		st.Data.SessionLanguage = lang
		st.Step = StepDone
		return GetText("done", lang), true
	case choice == "2":
		return e.StartSession(st), false
	}
	return GetText("err_estimate_choice", lang), false
}

// HandleMedia registers an inbound photo. Outside the photo step the
// photo still counts but the flow is not advanced.
func (e *Engine) HandleMedia(st *session.State) string {
	lang := e.lang(st)
	st.Data.PhotoCount++
	if st.Step == StepPhotoWait {
		st.Data.HasPhotos = true
		if st.Data.PhotoCount == 1 {
			return GetText("info_photo_received_first", lang)
		}
		return ""
	}
	return GetText("info_photo_received_late", lang)
}

// HandleLocation stores a shared map pin during an address step and
// answers with the matching floor question.
func (e *Engine) HandleLocation(st *session.State, lat, lon float64, name, address string) string {
	lang := e.lang(st)
	key, ok := addressSteps[st.Step]
	if !ok {
		return GetText("info_location_ignored", lang)
	}

	display := name
	if display == "" {
		display = fmt.Sprintf("%.5f, %.5f", lat, lon)
	}
	addr := "📍 " + display

	if st.Data.GeoPoints == nil {
		st.Data.GeoPoints = map[string]session.GeoPoint{}
	}
	st.Data.GeoPoints[key] = session.GeoPoint{Lat: lat, Lon: lon, Name: name, Address: address}

	var followup string
	switch st.Step {
	case StepAddrFrom:
		st.Data.AddrFrom = addr
		st.Step = StepFloorFrom
		if st.Data.PickupCount > 1 {
			followup = FormatText("q_floor_from_n", lang, map[string]string{"n": "1"})
		} else {
			followup = GetText("q_floor_from", lang)
		}
	case StepAddrFrom2:
		st.Data.PendingAddr = addr
		st.Step = StepFloorFrom2
		followup = FormatText("q_floor_from_n", lang, map[string]string{"n": "2"})
	case StepAddrFrom3:
		st.Data.PendingAddr = addr
		st.Step = StepFloorFrom3
		followup = FormatText("q_floor_from_n", lang, map[string]string{"n": "3"})
	default: // StepAddrTo
		st.Data.AddrTo = addr
		st.Step = StepFloorTo
		followup = GetText("q_floor_to", lang)
	}
	return GetText("info_location_saved", lang) + "\n\n" + followup
}

// ApplyPrefill seeds a fresh session from a landing-page lead and returns
// the acknowledgment plus the first unanswered question.
func (e *Engine) ApplyPrefill(st *session.State, p Prefill) string {
	lang := e.lang(st)
	st.BotType = BotType
	st.Data.SetExt("source", "landing_prefill")

	if p.Details != "" {
		st.Data.CargoDescription = p.Details
		st.Data.CargoRaw = p.Details
		st.Data.CargoItems = ExtractItems(p.Details)
		if vol, ok := VolumeFromRooms(p.Details); ok {
			st.Data.VolumeCategory = vol
			st.Data.VolumeFromRooms = true
		} else if vol, ok := VolumeFromItems(st.Data.CargoItems); ok {
			st.Data.VolumeCategory = vol
			st.Data.VolumeFromItems = true
		}
	} else if p.MoveType != "" {
		st.Data.CargoDescription = p.MoveType
		st.Data.CargoRaw = p.MoveType
	}

	if p.MoveType != "" {
		st.Data.SetExt("landing_move_type", p.MoveType)
	}
	st.Data.AddrFrom = p.AddrFrom
	st.Data.AddrTo = p.AddrTo

	if p.DateText != "" {
		st.Data.SetExt("landing_date_hint", p.DateText)
		if d, err := ParseDate(p.DateText, e.now()); err == nil {
			st.Data.MoveDate = d.Format("2006-01-02")
			st.Data.MoveDateLabel = "landing"
			st.Data.SetExt("landing_date_parsed", "true")
		}
	}

	if p.AddrFrom != "" && p.AddrTo != "" {
		route := ClassifyRoute(p.AddrFrom, p.AddrTo)
		st.Data.Route = &route
	}

	ack := GetText("ack_landing_prefill", lang)
	switch {
	case st.Data.CargoDescription == "":
		st.Step = StepCargo
		return ack + "\n\n" + GetText("q_cargo", lang)
	case st.Data.VolumeCategory == "" && len(st.Data.CargoItems) == 0:
		st.Step = StepVolume
		return ack + "\n\n" + GetText("q_volume", lang)
	case st.Data.AddrFrom != "" && st.Data.AddrTo != "":
		st.Step = StepConfirmAddresses
		return ack + "\n\n" + FormatText("q_confirm_addresses", lang, map[string]string{
			"addr_from": st.Data.AddrFrom,
			"addr_to":   st.Data.AddrTo,
		})
	default:
		st.Data.PickupCount = 1
		st.Data.Pickups = nil
		st.Step = StepPickupCount
		return ack + "\n\n" + GetText("q_pickup_count", lang)
	}
}
