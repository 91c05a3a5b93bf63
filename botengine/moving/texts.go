package moving

import "strings"

// Supported reply languages. Russian is the fallback for any key that has
// no translation in the requested language.
const (
	LangRU = "ru"
	LangEN = "en"
	LangHE = "he"
)

// translations maps message key -> language -> text. Placeholders use the
// {name} form and are filled by FormatText.
var translations = map[string]map[string]string{
	"welcome": {
		LangRU: "Привет! 👋\nЯ помогу быстро оформить заявку на перевозку.\nЗадам пару вопросов — это займёт 1–2 минуты.",
		LangEN: "Hello! 👋\nI'll help you quickly arrange a move.\nI'll ask a few questions — it will take 1-2 minutes.",
		LangHE: "שלום! 👋\nאני אעזור לך לארגן העברה במהירות.\nאשאל כמה שאלות - זה ייקח 1-2 דקות.",
	},
	"welcome_contact": {
		LangRU: "📞 Связаться с оператором: {phone}",
		LangEN: "📞 Contact operator: {phone}",
		LangHE: "📞 ליצירת קשר עם המפעיל: {phone}",
	},
	"q_cargo": {
		LangRU: "Что нужно перевезти?\nМожно коротко или списком.",
		LangEN: "What needs to be moved?\nBrief description or list.",
		LangHE: "מה צריך להעביר?\nתיאור קצר או רשימה.",
	},
	"q_addr_from": {
		LangRU: "Откуда забираем?\nНапишите адрес или район текстом\nили укажите на карте точку геолокации",
		LangEN: "Where do we pick up from?\nType an address or district\nor share a map location pin",
		LangHE: "מאיפה אוספים?\nכתוב כתובת או אזור\nאו שלח נקודת מיקום במפה",
	},
	"q_floor_from": {
		LangRU: "Какой этаж и есть ли лифт на месте загрузки?",
		LangEN: "What floor and is there an elevator at the pickup?",
		LangHE: "באיזו קומה ויש מעלית בנקודת האיסוף?",
	},
	"q_addr_to": {
		LangRU: "Куда доставляем?\nНапишите адрес или район текстом\nили укажите на карте точку геолокации",
		LangEN: "Where do we deliver to?\nType an address or district\nor share a map location pin",
		LangHE: "לאן מוסרים?\nכתוב כתובת או אזור\nאו שלח נקודת מיקום במפה",
	},
	"q_floor_to": {
		LangRU: "Какой этаж и есть ли лифт на месте выгрузки?",
		LangEN: "What floor and is there an elevator at the delivery?",
		LangHE: "באיזו קומה ויש מעלית בנקודת המסירה?",
	},
	"q_photo_menu": {
		LangRU: "Фото груза есть?\n1 — Да, отправлю фото\n2 — Нет фото",
		LangEN: "Do you have photos?\n1 — Yes, I'll send photos\n2 — No photos",
		LangHE: "יש לך תמונות?\n1 — כן, אני אשלח תמונות\n2 — אין תמונות",
	},
	"q_photo_menu_rooms": {
		LangRU: "Для переезда из квартиры фото помогут нам дать точную оценку! 📸\n1 — Да, отправлю фото\n2 — Нет фото",
		LangEN: "For apartment moves, photos help us give a much more accurate estimate! 📸\n1 — Yes, I'll send photos\n2 — No photos",
		LangHE: "להעברת דירה, תמונות עוזרות לנו לתת הערכה מדויקת יותר! 📸\n1 — כן, אני אשלח תמונות\n2 — אין תמונות",
	},
	"ack_landing_prefill": {
		LangRU: "Спасибо за заявку с сайта! 👋\nЯ уже получил ваши данные. Уточню пару деталей.",
		LangEN: "Thanks for the website inquiry! 👋\nI've got your details. Let me confirm a few things.",
		LangHE: "תודה על הפנייה מהאתר! 👋\nקיבלתי את הפרטים. אוודא כמה דברים.",
	},
	"q_confirm_addresses": {
		LangRU: "Вы указали:\n📍 Откуда: {addr_from}\n📍 Куда: {addr_to}\n\nХотите уточнить адреса (улица, дом, этаж)?\n1 — Да, уточню адреса\n2 — Нет, продолжить без уточнения",
		LangEN: "You provided:\n📍 From: {addr_from}\n📍 To: {addr_to}\n\nWould you like to specify full addresses (street, building, floor)?\n1 — Yes, I'll provide details\n2 — No, continue without",
		LangHE: "ציינת:\n📍 מ: {addr_from}\n📍 אל: {addr_to}\n\nרוצה לפרט כתובות מלאות (רחוב, בניין, קומה)?\n1 — כן, אפרט\n2 — לא, להמשיך בלי",
	},
	"err_confirm_addresses": {
		LangRU: "Выбери: 1 — уточнить адреса, 2 — продолжить.",
		LangEN: "Please choose: 1 — specify addresses, 2 — continue.",
		LangHE: "אנא בחר: 1 — לפרט כתובות, 2 — להמשיך.",
	},
	"err_rejected_input": {
		LangRU: "Не удалось обработать сообщение. Пожалуйста, отправьте текст без ссылок.",
		LangEN: "Could not process the message. Please send text without links.",
		LangHE: "לא ניתן לעבד את ההודעה. אנא שלח טקסט ללא קישורים.",
	},
	"q_photo_wait": {
		LangRU: "Ок, пришлите фото одним или несколькими сообщениями.\nКогда закончите — напишите «готово».",
		LangEN: "OK, send photos in one or more messages.\nWhen finished — write \"done\".",
		LangHE: "אוקיי, שלח תמונות בהודעה אחת או יותר.\nכשתסיים - כתוב \"סיימתי\".",
	},
	"q_extras": {
		LangRU: "Нужны доп. услуги?\n1 — грузчики\n2 — сборка/разборка\n3 — упаковка\n4 — ничего из этого\nМожно выбрать несколько: 1 3\nИли с комментарием, пример: 1 3 + нет парковки\nИли только текст с деталями.",
		LangEN: "Need extra services?\n1 — loaders\n2 — assembly/disassembly\n3 — packing\n4 — none of these\nCan choose multiple: 1 3\nOr with comment: 1 3 + 5th floor, no elevator\nOr just text with details.",
		LangHE: "צריך שירותים נוספים?\n1 — סבלים\n2 — הרכבה/פירוק\n3 — אריזה\n4 — אף אחד מאלה\nאפשר לבחור כמה: 1 3\nאו עם הערה: 1 3 + קומה 5, בלי מעלית\nאו רק טקסט עם פרטים.",
	},
	"done": {
		LangRU: "Спасибо! Я передал информацию оператору, он скоро свяжется с вами 👍",
		LangEN: "Thank you! I've sent the information to the operator, they will contact you soon 👍",
		LangHE: "תודה! העברתי את המידע למפעיל, הוא ייצור איתך קשר בקרוב 👍",
	},
	"err_cargo_too_short": {
		LangRU: "Можешь чуть подробнее? Например: «диван, холодильник, коробки».",
		LangEN: "Can you be more specific? For example: \"sofa, fridge, boxes\".",
		LangHE: "אתה יכול להיות יותר ספציפי? למשל: \"ספה, מקרר, קרטונים\".",
	},
	"err_addr_too_short": {
		LangRU: "Подскажи хотя бы город или район. Например: «Tel Aviv, ул. Дизенгоф 50».",
		LangEN: "Please provide at least a city or district. For example: \"Tel Aviv, 50 Dizengoff St\".",
		LangHE: "אנא ספק לפחות עיר או אזור. למשל: \"תל אביב, דיזנגוף 50\".",
	},
	"err_floor_too_short": {
		LangRU: "Напиши хотя бы этаж, например: «3 этаж, лифт есть» или «частный дом».",
		LangEN: "Please provide at least the floor, e.g.: \"3rd floor, elevator available\" or \"private house\".",
		LangHE: "אנא ציין לפחות את הקומה, למשל: \"קומה 3, יש מעלית\" או \"בית פרטי\".",
	},
	"err_photo_menu": {
		LangRU: "Можно выбрать:\n1 — отправлю фото\n2 — нет фото",
		LangEN: "You can choose:\n1 — I'll send photos\n2 — no photos",
		LangHE: "אתה יכול לבחור:\n1 — אני אשלח תמונות\n2 — אין תמונות",
	},
	"err_extras_empty": {
		LangRU: "Если ничего не нужно — напиши «нет». Иначе опиши детали в одном сообщении.",
		LangEN: "If nothing is needed — write \"no\". Otherwise describe details in one message.",
		LangHE: "אם אין צורך בכלום - כתוב \"לא\". אחרת תאר פרטים בהודעה אחת.",
	},
	"info_photo_wait": {
		LangRU: "Пришли фото сообщениями. Когда закончишь — напиши «готово».",
		LangEN: "Send photos in messages. When finished — write \"done\".",
		LangHE: "שלח תמונות בהודעות. כשתסיים - כתוב \"סיימתי\".",
	},
	"info_photo_received_first": {
		LangRU: "Фото получил 👍 Пришли ещё, если нужно. Когда закончишь — напиши «готово».",
		LangEN: "Photo received 👍 Send more if needed. When finished — write \"done\".",
		LangHE: "תמונה התקבלה 👍 שלח עוד אם צריך. כשתסיים - כתוב \"סיימתי\".",
	},
	"info_photo_received_late": {
		LangRU: "Фото получил 👍 Если хочешь оформить заявку заново — напиши «заново».",
		LangEN: "Photo received 👍 If you want to start over — write \"reset\".",
		LangHE: "תמונה התקבלה 👍 אם אתה רוצה להתחיל מחדש - כתוב \"מחדש\".",
	},
	"info_already_done": {
		LangRU: "Заявка уже оформлена. Если нужно — напишите уточнение.",
		LangEN: "Request already completed. If needed — write clarification.",
		LangHE: "הבקשה כבר הושלמה. אם צריך - כתוב הבהרה.",
	},
	"hint_can_reset": {
		LangRU: "Если хочешь начать заново — напиши «заново».",
		LangEN: "If you want to start over — write \"reset\".",
		LangHE: "אם אתה רוצה להתחיל מחדש - כתוב \"מחדש\".",
	},
	"hint_stale_resume": {
		LangRU: "У тебя есть незавершённая заявка. Можешь продолжить или написать «заново» чтобы начать сначала.",
		LangEN: "You have an unfinished request. You can continue or write \"reset\" to start over.",
		LangHE: "יש לך בקשה שלא הושלמה. אתה יכול להמשיך או לכתוב \"מחדש\" כדי להתחיל מחדש.",
	},
	"q_date": {
		LangRU: "Когда планируется перевозка?\n1 — завтра\n2 — через 2–3 дня\n3 — в течение недели\n4 — выбрать конкретную дату",
		LangEN: "When is the move planned?\n1 — tomorrow\n2 — in 2-3 days\n3 — within the next week\n4 — choose specific date",
		LangHE: "מתי מתוכנן המעבר?\n1 — מחר\n2 — בעוד 2-3 ימים\n3 — במהלך השבוע\n4 — בחר תאריך ספציפי",
	},
	"q_specific_date": {
		LangRU: "Укажите дату в формате ДД.ММ или ДД.ММ.ГГГГ\nНапример: 25.03 или 25.03.2026",
		LangEN: "Enter the date in DD.MM or DD.MM.YYYY format\nFor example: 25.03 or 25.03.2026",
		LangHE: "הזן את התאריך בפורמט DD.MM או DD.MM.YYYY\nלדוגמה: 25.03 או 25.03.2026",
	},
	"q_time_slot": {
		LangRU: "В какое время удобно?\n1 — утро (08:00–12:00)\n2 — день (12:00–16:00)\n3 — вечер (16:00–20:00)\n4 — точное время\n5 — пока не знаю",
		LangEN: "What time works for you?\n1 — morning (08:00-12:00)\n2 — afternoon (12:00-16:00)\n3 — evening (16:00-20:00)\n4 — exact time\n5 — not sure yet",
		LangHE: "מתי נוח לך?\n1 — בוקר (08:00-12:00)\n2 — צהריים (12:00-16:00)\n3 — ערב (16:00-20:00)\n4 — שעה מדויקת\n5 — עדיין לא יודע",
	},
	"q_exact_time": {
		LangRU: "Напишите время в формате ЧЧ:ММ (24-часовой)\nНапример: 14:30",
		LangEN: "Write the time in HH:MM format (24-hour)\nFor example: 14:30",
		LangHE: "כתוב את השעה בפורמט HH:MM (24 שעות)\nלדוגמה: 14:30",
	},
	"err_date_choice": {
		LangRU: "Выбери вариант: 1, 2, 3 или 4.",
		LangEN: "Please choose an option: 1, 2, 3, or 4.",
		LangHE: "אנא בחר אפשרות: 1, 2, 3 או 4.",
	},
	"err_date_format": {
		LangRU: "Не могу разобрать дату. Напиши в формате ДД.ММ или ДД.ММ.ГГГГ\nНапример: 25.03 или 25.03.2026",
		LangEN: "Can't parse the date. Please use DD.MM or DD.MM.YYYY format\nFor example: 25.03 or 25.03.2026",
		LangHE: "לא מצליח לפענח את התאריך. אנא השתמש בפורמט DD.MM או DD.MM.YYYY\nלדוגמה: 25.03 או 25.03.2026",
	},
	"err_date_invalid": {
		LangRU: "Такой даты не существует. Проверь и попробуй ещё раз.",
		LangEN: "This date doesn't exist. Please check and try again.",
		LangHE: "התאריך הזה לא קיים. אנא בדוק ונסה שוב.",
	},
	"err_date_too_soon": {
		LangRU: "Эта дата уже прошла. Укажи сегодняшнюю или более позднюю дату.",
		LangEN: "This date has already passed. Please choose today or a later date.",
		LangHE: "התאריך הזה כבר עבר. אנא בחר את היום או תאריך מאוחר יותר.",
	},
	"err_date_too_far": {
		LangRU: "Слишком далёкая дата (максимум 180 дней). Укажи другую дату.",
		LangEN: "The date is too far in the future (max 180 days). Please choose another date.",
		LangHE: "התאריך רחוק מדי (מקסימום 180 ימים). אנא בחר תאריך אחר.",
	},
	"err_time_slot_choice": {
		LangRU: "Выбери вариант: 1, 2, 3, 4 или 5.",
		LangEN: "Please choose an option: 1, 2, 3, 4, or 5.",
		LangHE: "אנא בחר אפשרות: 1, 2, 3, 4 או 5.",
	},
	"err_exact_time_format": {
		LangRU: "Не могу разобрать время. Напиши в формате ЧЧ:ММ, например: 14:30",
		LangEN: "Can't parse the time. Please use HH:MM format, e.g.: 14:30",
		LangHE: "לא מצליח לפענח את השעה. אנא השתמש בפורמט HH:MM, למשל: 14:30",
	},
	"estimate_summary": {
		LangRU: "📋 Примерная стоимость перевозки:\n💰 {min_price}–{max_price} ₪\n\nЭто предварительная оценка. Точная цена будет согласована с исполнителем.\n\nВсё верно? Отправляем заявку?\n1 — Да, отправить\n2 — Начать заново",
		LangEN: "📋 Estimated moving cost:\n💰 {min_price}–{max_price} ₪\n\nThis is a preliminary estimate. The exact price will be agreed with the mover.\n\nIs everything correct? Submit the request?\n1 — Yes, submit\n2 — Start over",
		LangHE: "📋 עלות משוערת להעברה:\n💰 {min_price}–{max_price} ₪\n\nזהו אומדן ראשוני. המחיר המדויק יסוכם עם המוביל.\n\nהכל נכון? שולחים את הבקשה?\n1 — כן, שלח\n2 — התחל מחדש",
	},
	"estimate_no_price": {
		LangRU: "📋 Мы не смогли точно рассчитать стоимость по описанию.\n\nНаш менеджер свяжется с вами для уточнения.\n\nОтправляем заявку?\n1 — Да, отправить\n2 — Начать заново",
		LangEN: "📋 We couldn't calculate an accurate estimate from the description.\n\nOur manager will contact you for details.\n\nSubmit the request?\n1 — Yes, submit\n2 — Start over",
		LangHE: "📋 לא הצלחנו לחשב הערכה מדויקת מהתיאור.\n\nהמנהל שלנו ייצור איתך קשר לפרטים.\n\nשולחים את הבקשה?\n1 — כן, שלח\n2 — התחל מחדש",
	},
	"err_estimate_choice": {
		LangRU: "Выбери: 1 — отправить заявку, 2 — начать заново.",
		LangEN: "Please choose: 1 — submit request, 2 — start over.",
		LangHE: "אנא בחר: 1 — שלח בקשה, 2 — התחל מחדש.",
	},
	"q_volume": {
		LangRU: "Какой примерный объём перевозки?\n1 — маленький (до 1 м³, пара сумок/коробок)\n2 — средний (1–3 м³, несколько предметов мебели)\n3 — большой (3–10 м³, комната или студия)\n4 — очень большой (10+ м³, квартира целиком)",
		LangEN: "What is the approximate volume of the move?\n1 — small (up to 1 m³, a couple of bags/boxes)\n2 — medium (1-3 m³, several pieces of furniture)\n3 — large (3-10 m³, a room or studio)\n4 — extra large (10+ m³, entire apartment)",
		LangHE: "מה הנפח המשוער של ההעברה?\n1 — קטן (עד 1 מ״ק, כמה תיקים/קרטונים)\n2 — בינוני (1-3 מ״ק, כמה פריטי ריהוט)\n3 — גדול (3-10 מ״ק, חדר או סטודיו)\n4 — גדול מאוד (10+ מ״ק, דירה שלמה)",
	},
	"err_volume_choice": {
		LangRU: "Выбери вариант: 1, 2, 3 или 4.",
		LangEN: "Please choose an option: 1, 2, 3, or 4.",
		LangHE: "אנא בחר אפשרות: 1, 2, 3 או 4.",
	},
	"q_pickup_count": {
		LangRU: "Сколько точек забора?\n1 — одна\n2 — две\n3 — три",
		LangEN: "How many pickup locations?\n1 — one\n2 — two\n3 — three",
		LangHE: "כמה נקודות איסוף?\n1 — אחת\n2 — שתיים\n3 — שלוש",
	},
	"err_pickup_count": {
		LangRU: "Выбери: 1, 2 или 3.",
		LangEN: "Please choose: 1, 2, or 3.",
		LangHE: "אנא בחר: 1, 2 או 3.",
	},
	"q_addr_from_n": {
		LangRU: "📍 Адрес точки забора #{n}:\n(адрес или район)",
		LangEN: "📍 Pickup location #{n} address:\n(address or district)",
		LangHE: "📍 כתובת נקודת איסוף #{n}:\n(כתובת או אזור)",
	},
	"q_floor_from_n": {
		LangRU: "Этаж и лифт на точке забора #{n}:",
		LangEN: "Floor and elevator at pickup #{n}:",
		LangHE: "קומה ומעלית בנקודת איסוף #{n}:",
	},
	"info_location_saved": {
		LangRU: "📍 Геолокация получена.",
		LangEN: "📍 Location received.",
		LangHE: "📍 מיקום התקבל.",
	},
	"info_location_ignored": {
		LangRU: "📍 Отправка геолокации на этом шаге не поддерживается. Пожалуйста, отправьте текстом.",
		LangEN: "📍 Location sharing is not supported at this step. Please type your answer.",
		LangHE: "📍 שליחת מיקום לא נתמכת בשלב זה. אנא כתוב את תשובתך.",
	},
}

// GetText returns the translation for key in lang, falling back to Russian
// and finally to the key itself when nothing is registered.
func GetText(key, lang string) string {
	tr, ok := translations[key]
	if !ok {
		return key
	}
	if s, ok := tr[lang]; ok && s != "" {
		return s
	}
	return tr[LangRU]
}

// FormatText resolves a translation and substitutes {name} placeholders.
func FormatText(key, lang string, params map[string]string) string {
	s := GetText(key, lang)
	for k, v := range params {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}
