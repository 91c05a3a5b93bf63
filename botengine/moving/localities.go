package moving

import (
	"regexp"
	"sort"
	"strings"
)

// Locality is a single Israeli locality from the CBS dataset, carried as
// a static table so address classification needs no external API.
type Locality struct {
	Code   int
	He     string
	En     string
	Ru     string
	Region int // CBS district code, see macroRegions
}

// eilatCode gets special routing treatment: any move touching Eilat is a
// cross-country job regardless of district arithmetic.
const eilatCode = 2600

var localities = []Locality{
	{Code: 3000, He: "ירושלים", En: "Jerusalem", Ru: "Иерусалим", Region: 11},
	{Code: 2610, He: "בית שמש", En: "Beit Shemesh", Ru: "Бейт-Шемеш", Region: 11},

	{Code: 5000, He: "תל אביב יפו", En: "Tel Aviv - Yafo", Ru: "Тель-Авив", Region: 51},
	{Code: 6200, He: "בת ים", En: "Bat Yam", Ru: "Бат-Ям", Region: 51},
	{Code: 6600, He: "חולון", En: "Holon", Ru: "Холон", Region: 51},
	{Code: 8600, He: "רמת גן", En: "Ramat Gan", Ru: "Рамат-Ган", Region: 52},
	{Code: 6100, He: "בני ברק", En: "Bnei Brak", Ru: "Бней-Брак", Region: 52},
	{Code: 6300, He: "גבעתיים", En: "Givatayim", Ru: "Гиватаим", Region: 52},
	{Code: 2620, He: "קרית אונו", En: "Kiryat Ono", Ru: "Кирьят-Оно", Region: 52},
	{Code: 7900, He: "פתח תקווה", En: "Petah Tikva", Ru: "Петах-Тиква", Region: 53},
	{Code: 8300, He: "ראשון לציון", En: "Rishon LeZion", Ru: "Ришон-ле-Цион", Region: 53},
	{Code: 2640, He: "ראש העין", En: "Rosh Haayin", Ru: "Рош-ха-Аин", Region: 53},

	{Code: 6400, He: "הרצליה", En: "Herzliya", Ru: "Герцлия", Region: 41},
	{Code: 2650, He: "רמת השרון", En: "Ramat Hasharon", Ru: "Рамат-ха-Шарон", Region: 41},
	{Code: 6900, He: "כפר סבא", En: "Kfar Saba", Ru: "Кфар-Саба", Region: 41},
	{Code: 8700, He: "רעננה", En: "Raanana", Ru: "Раанана", Region: 41},
	{Code: 7400, He: "נתניה", En: "Netanya", Ru: "Нетания", Region: 42},
	{Code: 6500, He: "חדרה", En: "Hadera", Ru: "Хадера", Region: 42},
	{Code: 8400, He: "רחובות", En: "Rehovot", Ru: "Реховот", Region: 43},
	{Code: 7200, He: "נס ציונה", En: "Ness Ziona", Ru: "Нес-Циона", Region: 43},
	{Code: 1200, He: "מודיעין מכבים רעות", En: "Modiin-Maccabim-Reut", Ru: "Модиин", Region: 44},
	{Code: 7000, He: "לוד", En: "Lod", Ru: "Лод", Region: 44},
	{Code: 8500, He: "רמלה", En: "Ramla", Ru: "Рамла", Region: 44},

	{Code: 4000, He: "חיפה", En: "Haifa", Ru: "Хайфа", Region: 31},
	{Code: 6800, He: "קרית אתא", En: "Kiryat Ata", Ru: "Кирьят-Ата", Region: 31},
	{Code: 9500, He: "קרית ביאליק", En: "Kiryat Bialik", Ru: "Кирьят-Бялик", Region: 31},
	{Code: 8200, He: "קרית מוצקין", En: "Kiryat Motzkin", Ru: "Кирьят-Моцкин", Region: 31},
	{Code: 9600, He: "קרית ים", En: "Kiryat Yam", Ru: "Кирьят-Ям", Region: 31},
	{Code: 2500, He: "נשר", En: "Nesher", Ru: "Нешер", Region: 32},
	{Code: 2100, He: "טירת כרמל", En: "Tirat Carmel", Ru: "Тират-Кармель", Region: 32},
	{Code: 1020, He: "אור עקיבא", En: "Or Akiva", Ru: "Ор-Акива", Region: 32},

	{Code: 8000, He: "צפת", En: "Safed", Ru: "Цфат", Region: 21},
	{Code: 2800, He: "קרית שמונה", En: "Kiryat Shmona", Ru: "Кирьят-Шмона", Region: 21},
	{Code: 6700, He: "טבריה", En: "Tiberias", Ru: "Тверия", Region: 22},
	{Code: 7700, He: "עפולה", En: "Afula", Ru: "Афула", Region: 23},
	{Code: 874, He: "מגדל העמק", En: "Migdal Haemek", Ru: "Мигдаль-ха-Эмек", Region: 23},
	{Code: 7300, He: "נצרת", En: "Nazareth", Ru: "Назарет", Region: 24},
	{Code: 1061, He: "נוף הגליל", En: "Nof Hagalil", Ru: "Ноф-ха-Галиль", Region: 24},
	{Code: 7600, He: "עכו", En: "Akko", Ru: "Акко", Region: 25},
	{Code: 9100, He: "נהריה", En: "Nahariya", Ru: "Нагария", Region: 25},
	{Code: 1139, He: "כרמיאל", En: "Karmiel", Ru: "Кармиэль", Region: 25},

	{Code: 70, He: "אשדוד", En: "Ashdod", Ru: "Ашдод", Region: 61},
	{Code: 7100, He: "אשקלון", En: "Ashkelon", Ru: "Ашкелон", Region: 61},
	{Code: 2630, He: "קרית גת", En: "Kiryat Gat", Ru: "Кирьят-Гат", Region: 61},
	{Code: 1031, He: "שדרות", En: "Sderot", Ru: "Сдерот", Region: 61},
	{Code: 246, He: "נתיבות", En: "Netivot", Ru: "Нетивот", Region: 61},
	{Code: 9000, He: "באר שבע", En: "Beer Sheva", Ru: "Беэр-Шева", Region: 62},
	{Code: 2200, He: "דימונה", En: "Dimona", Ru: "Димона", Region: 62},
	{Code: 2600, He: "אילת", En: "Eilat", Ru: "Эйлат", Region: 62},
}

// nameAliases covers short forms and variant spellings whose official
// name differs (e.g. "Tel Aviv" for "Tel Aviv - Yafo").
var nameAliases = map[string]int{
	"tel aviv":       5000,
	"тель авив":      5000,
	"тель-авив":      5000,
	"תל אביב":        5000,
	"beer sheva":     9000,
	"be'er sheva":    9000,
	"беер шева":      9000,
	"באר שבע":        9000,
	"rishon lezion":  8300,
	"rishon le-zion": 8300,
	"ришон ле-цион":  8300,
	"ришон":          8300,
	"ראשון לציון":    8300,
	"petah tikva":    7900,
	"петах тиква":    7900,
	"פתח תקוה":       7900,
	"kiryat ata":     6800,
	"kiryat bialik":  9500,
	"kiryat motzkin": 8200,
	"kiryat yam":     9600,
	"kiryat shmona":  2800,
	"kiryat gat":     2630,
	"kiryat ono":     2620,
	"eilat":          2600,
	"beit shemesh":   2610,
	"bat yam":        6200,
	"bnei brak":      6100,
	"kfar saba":      6900,
	"ramat gan":      8600,
	"ramat hasharon": 2650,
	"rosh haayin":    2640,
	"migdal haemek":  874,
	"nof hagalil":    1061,
	"modiin":         1200,
	"модиин":         1200,
	"or akiva":       1020,
	"acre":           7600,
	"акко":           7600,
}

var (
	localityByCode = func() map[int]Locality {
		m := make(map[int]Locality, len(localities))
		for _, loc := range localities {
			m[loc.Code] = loc
		}
		return m
	}()

	stripCharsRe  = regexp.MustCompile(`["'` + "`" + `\x{2018}\x{2019}\x{201c}\x{201d}\x{05f3}\x{05f4}().]`)
	localityWSRe  = regexp.MustCompile(`\s+`)
	localityDashes = strings.NewReplacer("–", " ", "—", " ", "‑", " ", "-", " ")
)

// normalizeLocalityName lowercases, folds dashes to spaces, strips quote
// and parenthesis characters and collapses whitespace.
func normalizeLocalityName(name string) string {
	if name == "" {
		return ""
	}
	t := strings.ToLower(name)
	t = strings.ReplaceAll(t, "ё", "е")
	t = localityDashes.Replace(t)
	t = stripCharsRe.ReplaceAllString(t, "")
	return strings.TrimSpace(localityWSRe.ReplaceAllString(t, " "))
}

type lookupEntry struct {
	key string
	loc Locality
}

// localityLookup is the normalized name index, sorted longest-first so
// multi-word names match before their substrings.
var localityLookup = func() []lookupEntry {
	raw := map[string]Locality{}
	for _, loc := range localities {
		for _, name := range []string{loc.He, loc.En, loc.Ru} {
			key := normalizeLocalityName(name)
			if len([]rune(key)) < 2 {
				continue
			}
			if _, ok := raw[key]; !ok {
				raw[key] = loc
			}
		}
	}
	for alias, code := range nameAliases {
		key := normalizeLocalityName(alias)
		if key == "" {
			continue
		}
		if _, ok := raw[key]; ok {
			continue
		}
		if loc, ok := localityByCode[code]; ok {
			raw[key] = loc
		}
	}
	out := make([]lookupEntry, 0, len(raw))
	for k, loc := range raw {
		out = append(out, lookupEntry{key: k, loc: loc})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].key) != len(out[j].key) {
			return len(out[i].key) > len(out[j].key)
		}
		return out[i].key < out[j].key
	})
	return out
}()

const boundaryChars = " ,-/"

func isWordBoundary(text string, start, end int) bool {
	if start > 0 && !strings.ContainsRune(boundaryChars, rune(text[start-1])) {
		return false
	}
	if end < len(text) && !strings.ContainsRune(boundaryChars, rune(text[end])) {
		return false
	}
	return true
}

// FindLocality scans free text for the longest known locality name. The
// match must be word-boundary aligned so street words do not hit short
// city names.
func FindLocality(text string) (Locality, bool) {
	normalized := normalizeLocalityName(text)
	if normalized == "" {
		return Locality{}, false
	}
	for _, e := range localityLookup {
		idx := strings.Index(normalized, e.key)
		if idx >= 0 && isWordBoundary(normalized, idx, idx+len(e.key)) {
			return e.loc, true
		}
	}
	return Locality{}, false
}

// LocalityName returns the locality display name in lang, preferring the
// requested language and falling back en -> ru -> he.
func (l Locality) LocalityName(lang string) string {
	switch lang {
	case LangHE:
		if l.He != "" {
			return l.He
		}
	case LangRU:
		if l.Ru != "" {
			return l.Ru
		}
	}
	if l.En != "" {
		return l.En
	}
	if l.Ru != "" {
		return l.Ru
	}
	return l.He
}
