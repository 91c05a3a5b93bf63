package moving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/domains/session"
)

func newTestEngine() *Engine {
	return NewEngine(Options{
		EstimateDisplayEnabled: true,
		Now:                    testNow,
	})
}

func newTestState() *session.State {
	return &session.State{
		TenantID: "acme",
		ChatID:   "whatsapp:972500000001",
		LeadID:   "lead-1",
		Language: LangRU,
	}
}

func step(t *testing.T, e *Engine, st *session.State, msg, wantStep string) string {
	t.Helper()
	reply, _ := e.HandleText(st, msg)
	require.Equal(t, wantStep, st.Step, "after message %q", msg)
	return reply
}

func TestEngineHappyPath(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	reply, done := e.HandleText(st, "привет")
	require.False(t, done)
	assert.Contains(t, reply, "Привет")
	assert.Contains(t, reply, "Что нужно перевезти")
	assert.Equal(t, StepCargo, st.Step)

	step(t, e, st, "диван и холодильник", StepPickupCount)
	assert.Equal(t, "medium", st.Data.VolumeCategory)
	assert.True(t, st.Data.VolumeFromItems)
	require.Len(t, st.Data.CargoItems, 2)

	step(t, e, st, "1", StepAddrFrom)
	step(t, e, st, "Хайфа, ул. Герцль 10", StepFloorFrom)
	step(t, e, st, "3 этаж, лифта нет", StepAddrTo)
	require.Len(t, st.Data.Pickups, 1)
	assert.Equal(t, "Хайфа, ул. Герцль 10", st.Data.Pickups[0].Addr)

	step(t, e, st, "Тель-Авив, Дизенгоф 5", StepFloorTo)
	step(t, e, st, "2 этаж, есть лифт", StepDate)

	step(t, e, st, "4", StepSpecificDate)
	reply = step(t, e, st, "25.03", StepTimeSlot)
	assert.Equal(t, "2026-03-25", st.Data.MoveDate)
	assert.Equal(t, "specific", st.Data.MoveDateLabel)
	assert.Contains(t, reply, "В какое время")

	reply = step(t, e, st, "1", StepPhotoMenu)
	assert.Equal(t, "morning", st.Data.TimeWindow)
	assert.Contains(t, reply, "Фото груза есть")

	step(t, e, st, "2", StepExtras)

	reply = step(t, e, st, "4", StepEstimate)
	require.NotNil(t, st.Data.Estimate)
	assert.Equal(t, ValueNone, st.Data.DetailsFree)
	assert.Equal(t, BandInterRegionShort, st.Data.Route.Band)
	assert.Contains(t, reply, "Примерная стоимость")
	assert.Contains(t, reply, "₪")

	reply, done = e.HandleText(st, "1")
	require.True(t, done)
	assert.Equal(t, StepDone, st.Step)
	assert.Contains(t, reply, "Спасибо")
	assert.Equal(t, LangRU, st.Data.SessionLanguage)

	reply, done = e.HandleText(st, "ещё вопрос")
	require.False(t, done)
	assert.Contains(t, reply, "уже оформлена")
}

func TestEngineResetIntent(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	e.HandleText(st, "диван и холодильник")
	require.NotEmpty(t, st.Data.CargoDescription)

	reply, done := e.HandleText(st, "заново")
	require.False(t, done)
	assert.Equal(t, StepCargo, st.Step)
	assert.Empty(t, st.Data.CargoDescription)
	assert.Contains(t, reply, "Привет")
}

func TestEngineLanguageAutoSwitch(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	reply, _ := e.HandleText(st, "I need to move a sofa and a fridge")
	assert.Equal(t, LangEN, st.Language)
	assert.Contains(t, reply, "How many pickup locations")
}

func TestEngineCargoValidation(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	reply, _ := e.HandleText(st, "ок")
	assert.Equal(t, StepCargo, st.Step)
	assert.Contains(t, reply, "подробнее")
}

func TestEngineVolumeStepWhenNothingRecognized(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	reply := step(t, e, st, "разные вещи", StepVolume)
	assert.Contains(t, reply, "объём")

	reply, _ = e.HandleText(st, "7")
	assert.Equal(t, StepVolume, st.Step)
	assert.Contains(t, reply, "1, 2, 3 или 4")

	step(t, e, st, "3", StepPickupCount)
	assert.Equal(t, "large", st.Data.VolumeCategory)
}

func TestEngineRoomsVolume(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	step(t, e, st, "переезд, 3-комнатная квартира", StepPickupCount)
	assert.Equal(t, "large", st.Data.VolumeCategory)
	assert.True(t, st.Data.VolumeFromRooms)
}

func TestEngineMultiPickup(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	e.HandleText(st, "привет")
	e.HandleText(st, "диван и холодильник")
	reply := step(t, e, st, "2", StepAddrFrom)
	assert.Contains(t, reply, "#1")

	step(t, e, st, "Хайфа, Герцль 10", StepFloorFrom)
	reply = step(t, e, st, "3 этаж без лифта", StepAddrFrom2)
	assert.Contains(t, reply, "#2")

	step(t, e, st, "Кирьят-Ата, Главная 2", StepFloorFrom2)
	step(t, e, st, "частный дом", StepAddrTo)

	require.Len(t, st.Data.Pickups, 2)
	assert.Equal(t, "Кирьят-Ата, Главная 2", st.Data.Pickups[1].Addr)
	assert.Empty(t, st.Data.PendingAddr)
}

func TestEnginePhotoFlow(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepPhotoMenu

	step(t, e, st, "1", StepPhotoWait)
	assert.True(t, st.Data.HasPhotos)

	reply := e.HandleMedia(st)
	assert.Contains(t, reply, "Фото получил")
	assert.Equal(t, 1, st.Data.PhotoCount)

	// Later photos are accepted silently.
	assert.Empty(t, e.HandleMedia(st))
	assert.Equal(t, 2, st.Data.PhotoCount)

	step(t, e, st, "готово", StepExtras)
	assert.True(t, st.Data.HasPhotos)
}

func TestEnginePhotoWaitDoneWithoutPhotos(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepPhotoWait
	st.Data.HasPhotos = true

	step(t, e, st, "готово", StepExtras)
	assert.False(t, st.Data.HasPhotos)
}

func TestEngineMediaOutsidePhotoStep(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepCargo

	reply := e.HandleMedia(st)
	assert.Contains(t, reply, "заново")
	assert.Equal(t, 1, st.Data.PhotoCount)
	assert.False(t, st.Data.HasPhotos)
}

func TestEngineLocationAtAddressStep(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepAddrFrom
	st.Data.PickupCount = 1

	reply := e.HandleLocation(st, 32.794, 34.989, "Haifa Port", "")
	assert.Contains(t, reply, "Геолокация получена")
	assert.Contains(t, reply, "этаж")
	assert.Equal(t, StepFloorFrom, st.Step)
	assert.Equal(t, "📍 Haifa Port", st.Data.AddrFrom)
	require.Contains(t, st.Data.GeoPoints, "pickup_1")

	// Without a venue name the pin is shown as coordinates.
	st2 := newTestState()
	st2.Step = StepAddrTo
	e.HandleLocation(st2, 32.08, 34.78, "", "")
	assert.Equal(t, "📍 32.08000, 34.78000", st2.Data.AddrTo)
}

func TestEngineLocationIgnoredElsewhere(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepDate

	reply := e.HandleLocation(st, 32.0, 34.0, "", "")
	assert.Contains(t, reply, "не поддерживается")
	assert.Equal(t, StepDate, st.Step)
	assert.Empty(t, st.Data.GeoPoints)
}

func TestEngineExtrasWithComment(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepExtras
	st.Data.VolumeCategory = "medium"
	st.Data.CargoRaw = "диван"

	reply, _ := e.HandleText(st, "1 3 + нет парковки")
	assert.Equal(t, StepEstimate, st.Step)
	assert.Equal(t, []string{"loaders", "packing"}, st.Data.Extras)
	assert.Equal(t, "нет парковки", st.Data.DetailsFree)
	assert.Contains(t, reply, "₪")
}

func TestEngineExtrasDecline(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepExtras
	st.Data.VolumeCategory = "small"
	st.Data.CargoRaw = "коробки"

	_, _ = e.HandleText(st, "нет")
	assert.Equal(t, StepEstimate, st.Step)
	assert.Empty(t, st.Data.Extras)
	assert.Equal(t, ValueNone, st.Data.DetailsFree)
}

func TestEngineEstimateSuppressedForVagueCargo(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepExtras
	st.Data.CargoRaw = "много всякого разного добра из гаража и кладовки"

	reply, _ := e.HandleText(st, "4")
	assert.Equal(t, StepEstimate, st.Step)
	assert.True(t, st.Data.EstimateSuppressed)
	assert.Contains(t, reply, "не смогли точно рассчитать")
	require.NotNil(t, st.Data.Estimate)
	assert.Zero(t, st.Data.Estimate.Min)
}

func TestEngineEstimateHiddenWhenDisplayDisabled(t *testing.T) {
	e := NewEngine(Options{EstimateDisplayEnabled: false, Now: testNow})
	st := newTestState()
	st.Step = StepExtras
	st.Data.VolumeCategory = "medium"
	st.Data.CargoRaw = "диван"

	reply, _ := e.HandleText(st, "4")
	assert.True(t, st.Data.EstimateDisplayDisabled)
	assert.Contains(t, reply, "не смогли точно рассчитать")
	require.NotNil(t, st.Data.Estimate)
	assert.Positive(t, st.Data.Estimate.Min)
}

func TestEngineEstimateRestart(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepEstimate
	st.Data.VolumeCategory = "medium"

	reply, done := e.HandleText(st, "2")
	require.False(t, done)
	assert.Equal(t, StepCargo, st.Step)
	assert.Empty(t, st.Data.VolumeCategory)
	assert.Contains(t, reply, "Привет")
}

func TestEngineRejectedInput(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepCargo

	reply, _ := e.HandleText(st, "javascript:alert(1)")
	assert.Contains(t, reply, "без ссылок")
	assert.Equal(t, StepCargo, st.Step)
}

func TestEngineWelcomeBlockWithOperatorPhone(t *testing.T) {
	e := NewEngine(Options{OperatorPhone: "+972-50-000-0000", EstimateDisplayEnabled: true, Now: testNow})
	st := newTestState()

	reply, _ := e.HandleText(st, "привет")
	assert.Contains(t, reply, "+972-50-000-0000")
	assert.Contains(t, reply, "Связаться с оператором")
}

func TestEnginePrefillConfirmAddresses(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	p, ok := ParseLandingPrefill("Здравствуйте! Хочу узнать стоимость переезда.\nТип: Квартира\nОткуда: Хайфа\nКуда: Тель-Авив\nДата: 25.03\nДетали: диван, холодильник и 10 коробок")
	require.True(t, ok)

	reply := e.ApplyPrefill(st, p)
	assert.Equal(t, StepConfirmAddresses, st.Step)
	assert.Contains(t, reply, "Спасибо за заявку с сайта")
	assert.Contains(t, reply, "Хайфа")
	assert.Equal(t, "landing_prefill", st.Data.GetExt("source"))
	assert.Equal(t, "2026-03-25", st.Data.MoveDate)
	assert.Equal(t, "true", st.Data.GetExt("landing_date_parsed"))
	require.Len(t, st.Data.CargoItems, 3)
	require.NotNil(t, st.Data.Route)
	assert.Equal(t, BandInterRegionShort, st.Data.Route.Band)

	// Keeping the landing addresses jumps straight to scheduling; the
	// parsed landing date skips the date question.
	reply, _ = e.HandleText(st, "2")
	assert.Equal(t, StepTimeSlot, st.Step)
	assert.Contains(t, reply, "В какое время")
	require.Len(t, st.Data.Pickups, 1)
	assert.Equal(t, "—", st.Data.Pickups[0].Floor)
	assert.Equal(t, "true", st.Data.GetExt("landing_addresses_kept"))
}

func TestEnginePrefillAsksForMissingCargo(t *testing.T) {
	e := newTestEngine()
	st := newTestState()

	p, ok := ParseLandingPrefill("Здравствуйте! Хочу узнать стоимость переезда.\nОткуда: Хайфа\nКуда: Тель-Авив")
	require.True(t, ok)

	reply := e.ApplyPrefill(st, p)
	assert.Equal(t, StepCargo, st.Step)
	assert.Contains(t, reply, "Что нужно перевезти")
}

func TestParseLandingPrefillRejectsOrdinaryMessage(t *testing.T) {
	_, ok := ParseLandingPrefill("привет, нужен переезд")
	assert.False(t, ok)
}

func TestParseLandingPrefillMoveTypeAllowlist(t *testing.T) {
	p, ok := ParseLandingPrefill("Здравствуйте! Хочу узнать стоимость переезда.\nТип: Вертолёт\nОткуда: Хайфа")
	require.True(t, ok)
	assert.Empty(t, p.MoveType)
	assert.Equal(t, "Хайфа", p.AddrFrom)
}

func TestEngineSanitizeStripsMarkup(t *testing.T) {
	got, err := SanitizeInput("<b>диван</b> и  холодильник", 2000)
	require.NoError(t, err)
	assert.Equal(t, "диван и холодильник", got)

	_, err = SanitizeInput("https://spam.example/offer", 2000)
	assert.ErrorIs(t, err, ErrRejectedInput)
}

func TestEngineTimeSlotExactTime(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepTimeSlot

	step(t, e, st, "4", StepExactTime)
	reply, _ := e.HandleText(st, "14:30")
	assert.Equal(t, StepPhotoMenu, st.Step)
	assert.Equal(t, "exact", st.Data.TimeSlot)
	assert.Equal(t, "14:30", st.Data.ExactTime)
	assert.Equal(t, "exact:14:30", st.Data.TimeWindow)
	assert.Contains(t, reply, "Фото")
}

func TestEngineDateFreeTextFallback(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepDate

	reply, _ := e.HandleText(st, "в пятницу")
	assert.Equal(t, StepTimeSlot, st.Step)
	assert.Equal(t, "2026-03-13", st.Data.MoveDate)
	assert.Equal(t, "natural", st.Data.MoveDateLabel)
	assert.Contains(t, reply, "В какое время")
}

func TestEngineSpecificDateErrors(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Step = StepSpecificDate

	reply, _ := e.HandleText(st, "31.02")
	assert.Contains(t, reply, "не существует")

	reply, _ = e.HandleText(st, "15.10")
	assert.Contains(t, reply, "180 дней")

	reply, _ = e.HandleText(st, "чч.мм")
	assert.Contains(t, reply, "ДД.ММ")
	assert.Equal(t, StepSpecificDate, st.Step)
}

func TestEngineConfirmKeepsLanguage(t *testing.T) {
	e := newTestEngine()
	st := newTestState()
	st.Language = LangEN
	st.Step = StepEstimate
	st.Data.VolumeCategory = "small"

	reply, done := e.HandleText(st, "yes")
	require.True(t, done)
	assert.Equal(t, LangEN, st.Data.SessionLanguage)
	assert.Contains(t, reply, "Thank you")
}
