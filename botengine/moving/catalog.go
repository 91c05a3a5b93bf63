package moving

import "sort"

// CatalogItem is one recognizable cargo item with its handling price range
// (ILS, per unit) and a rough volume estimate used for volume inference.
type CatalogItem struct {
	Key      string
	PriceLo  int
	PriceHi  int
	VolumeM3 float64
	Labels   map[string]string // ru / en / he display names
}

// PriceMid returns the midpoint of the handling price range.
func (c CatalogItem) PriceMid() float64 {
	return float64(c.PriceLo+c.PriceHi) / 2
}

var catalog = map[string]CatalogItem{
	"refrigerator": {
		Key: "refrigerator", PriceLo: 200, PriceHi: 280, VolumeM3: 1.2,
		Labels: map[string]string{LangRU: "Холодильник", LangEN: "Refrigerator", LangHE: "מקרר"},
	},
	"freezer": {
		Key: "freezer", PriceLo: 180, PriceHi: 260, VolumeM3: 0.9,
		Labels: map[string]string{LangRU: "Морозильник", LangEN: "Freezer", LangHE: "מקפיא"},
	},
	"washing_machine": {
		Key: "washing_machine", PriceLo: 180, PriceHi: 240, VolumeM3: 0.4,
		Labels: map[string]string{LangRU: "Стиральная машина", LangEN: "Washing machine", LangHE: "מכונת כביסה"},
	},
	"dryer": {
		Key: "dryer", PriceLo: 170, PriceHi: 220, VolumeM3: 0.4,
		Labels: map[string]string{LangRU: "Сушильная машина", LangEN: "Dryer", LangHE: "מייבש כביסה"},
	},
	"dishwasher": {
		Key: "dishwasher", PriceLo: 160, PriceHi: 220, VolumeM3: 0.4,
		Labels: map[string]string{LangRU: "Посудомоечная машина", LangEN: "Dishwasher", LangHE: "מדיח כלים"},
	},
	"oven": {
		Key: "oven", PriceLo: 150, PriceHi: 210, VolumeM3: 0.4,
		Labels: map[string]string{LangRU: "Духовой шкаф", LangEN: "Oven", LangHE: "תנור אפייה"},
	},
	"microwave": {
		Key: "microwave", PriceLo: 30, PriceHi: 50, VolumeM3: 0.1,
		Labels: map[string]string{LangRU: "Микроволновка", LangEN: "Microwave", LangHE: "מיקרוגל"},
	},
	"air_conditioner": {
		Key: "air_conditioner", PriceLo: 150, PriceHi: 250, VolumeM3: 0.3,
		Labels: map[string]string{LangRU: "Кондиционер", LangEN: "Air conditioner", LangHE: "מזגן"},
	},
	"tv": {
		Key: "tv", PriceLo: 60, PriceHi: 100, VolumeM3: 0.2,
		Labels: map[string]string{LangRU: "Телевизор", LangEN: "TV", LangHE: "טלוויזיה"},
	},
	"sofa_3seat": {
		Key: "sofa_3seat", PriceLo: 200, PriceHi: 250, VolumeM3: 1.8,
		Labels: map[string]string{LangRU: "Диван (3-местный)", LangEN: "Sofa (3-seat)", LangHE: "ספה תלת מושבית"},
	},
	"sofa_2seat": {
		Key: "sofa_2seat", PriceLo: 150, PriceHi: 200, VolumeM3: 1.2,
		Labels: map[string]string{LangRU: "Диван (2-местный)", LangEN: "Sofa (2-seat)", LangHE: "ספה דו מושבית"},
	},
	"armchair": {
		Key: "armchair", PriceLo: 80, PriceHi: 120, VolumeM3: 0.6,
		Labels: map[string]string{LangRU: "Кресло", LangEN: "Armchair", LangHE: "כורסה"},
	},
	"chair": {
		Key: "chair", PriceLo: 20, PriceHi: 35, VolumeM3: 0.15,
		Labels: map[string]string{LangRU: "Стул", LangEN: "Chair", LangHE: "כיסא"},
	},
	"dining_table": {
		Key: "dining_table", PriceLo: 120, PriceHi: 180, VolumeM3: 0.8,
		Labels: map[string]string{LangRU: "Обеденный стол", LangEN: "Dining table", LangHE: "שולחן אוכל"},
	},
	"desk": {
		Key: "desk", PriceLo: 100, PriceHi: 150, VolumeM3: 0.6,
		Labels: map[string]string{LangRU: "Письменный стол", LangEN: "Desk", LangHE: "שולחן כתיבה"},
	},
	"coffee_table": {
		Key: "coffee_table", PriceLo: 60, PriceHi: 100, VolumeM3: 0.3,
		Labels: map[string]string{LangRU: "Журнальный столик", LangEN: "Coffee table", LangHE: "שולחן קפה"},
	},
	"wardrobe_large": {
		Key: "wardrobe_large", PriceLo: 300, PriceHi: 350, VolumeM3: 1.8,
		Labels: map[string]string{LangRU: "Шкаф (большой)", LangEN: "Wardrobe (large)", LangHE: "ארון גדול"},
	},
	"wardrobe_small": {
		Key: "wardrobe_small", PriceLo: 150, PriceHi: 220, VolumeM3: 1.0,
		Labels: map[string]string{LangRU: "Шкаф (маленький)", LangEN: "Wardrobe (small)", LangHE: "ארון קטן"},
	},
	"dresser": {
		Key: "dresser", PriceLo: 140, PriceHi: 200, VolumeM3: 0.6,
		Labels: map[string]string{LangRU: "Комод", LangEN: "Dresser", LangHE: "שידה"},
	},
	"bookshelf": {
		Key: "bookshelf", PriceLo: 90, PriceHi: 140, VolumeM3: 0.5,
		Labels: map[string]string{LangRU: "Книжный стеллаж", LangEN: "Bookshelf", LangHE: "כוננית ספרים"},
	},
	"bed_double": {
		Key: "bed_double", PriceLo: 190, PriceHi: 240, VolumeM3: 1.5,
		Labels: map[string]string{LangRU: "Кровать (двуспальная)", LangEN: "Bed (double)", LangHE: "מיטה זוגית"},
	},
	"bed_single": {
		Key: "bed_single", PriceLo: 120, PriceHi: 170, VolumeM3: 0.9,
		Labels: map[string]string{LangRU: "Кровать (односпальная)", LangEN: "Bed (single)", LangHE: "מיטת יחיד"},
	},
	"crib": {
		Key: "crib", PriceLo: 80, PriceHi: 120, VolumeM3: 0.5,
		Labels: map[string]string{LangRU: "Детская кроватка", LangEN: "Crib", LangHE: "מיטת תינוק"},
	},
	"mattress": {
		Key: "mattress", PriceLo: 60, PriceHi: 100, VolumeM3: 0.5,
		Labels: map[string]string{LangRU: "Матрас", LangEN: "Mattress", LangHE: "מזרן"},
	},
	"box_standard": {
		Key: "box_standard", PriceLo: 15, PriceHi: 20, VolumeM3: 0.06,
		Labels: map[string]string{LangRU: "Коробка", LangEN: "Box", LangHE: "קרטון"},
	},
	"piano": {
		Key: "piano", PriceLo: 800, PriceHi: 1200, VolumeM3: 1.5,
		Labels: map[string]string{LangRU: "Пианино", LangEN: "Piano", LangHE: "פסנתר"},
	},
	"safe": {
		Key: "safe", PriceLo: 300, PriceHi: 500, VolumeM3: 0.3,
		Labels: map[string]string{LangRU: "Сейф", LangEN: "Safe", LangHE: "כספת"},
	},
	"treadmill": {
		Key: "treadmill", PriceLo: 150, PriceHi: 250, VolumeM3: 0.8,
		Labels: map[string]string{LangRU: "Беговая дорожка", LangEN: "Treadmill", LangHE: "הליכון"},
	},
	"bicycle": {
		Key: "bicycle", PriceLo: 50, PriceHi: 80, VolumeM3: 0.3,
		Labels: map[string]string{LangRU: "Велосипед", LangEN: "Bicycle", LangHE: "אופניים"},
	},
}

// itemAliases maps a lowercase substring to a catalog key. Cyrillic stems
// cover inflected forms ("диван", "диваны", "дивана").
var itemAliases = map[string]string{
	"холодильник": "refrigerator", "fridge": "refrigerator", "refrigerator": "refrigerator", "מקרר": "refrigerator",
	"морозильник": "freezer", "морозилк": "freezer", "freezer": "freezer", "מקפיא": "freezer",
	"стиральная машина": "washing_machine", "стиралк": "washing_machine", "washing machine": "washing_machine", "washer": "washing_machine", "מכונת כביסה": "washing_machine",
	"сушильная машина": "dryer", "сушилк": "dryer", "dryer": "dryer", "מייבש": "dryer",
	"посудомойк": "dishwasher", "посудомоечная машина": "dishwasher", "dishwasher": "dishwasher", "מדיח": "dishwasher",
	"духовк": "oven", "духовой шкаф": "oven", "плита": "oven", "oven": "oven", "stove": "oven", "תנור": "oven",
	"микроволновк": "microwave", "microwave": "microwave", "מיקרוגל": "microwave",
	"кондиционер": "air_conditioner", "air conditioner": "air_conditioner", "aircon": "air_conditioner", "מזגן": "air_conditioner",
	"телевизор": "tv", "television": "tv", "tv": "tv", "טלוויזיה": "tv",
	"диван": "sofa_3seat", "sofa": "sofa_3seat", "couch": "sofa_3seat", "ספה": "sofa_3seat",
	"двухместный диван": "sofa_2seat", "2-seat sofa": "sofa_2seat", "loveseat": "sofa_2seat",
	"кресло": "armchair", "armchair": "armchair", "כורסה": "armchair", "כורסא": "armchair",
	"стул": "chair", "стуль": "chair", "chair": "chair", "כיסא": "chair", "כסא": "chair", "כיסאות": "chair",
	"обеденный стол": "dining_table", "dining table": "dining_table", "שולחן אוכל": "dining_table",
	"письменный стол": "desk", "desk": "desk", "שולחן כתיבה": "desk",
	"журнальный стол": "coffee_table", "coffee table": "coffee_table", "שולחן קפה": "coffee_table",
	"стол": "dining_table", "table": "dining_table", "שולחן": "dining_table",
	"шкаф": "wardrobe_large", "wardrobe": "wardrobe_large", "closet": "wardrobe_large", "ארון": "wardrobe_large",
	"комод": "dresser", "dresser": "dresser", "chest of drawers": "dresser", "שידה": "dresser",
	"стеллаж": "bookshelf", "bookshelf": "bookshelf", "bookcase": "bookshelf", "כוננית": "bookshelf",
	"двуспальная кровать": "bed_double", "double bed": "bed_double", "מיטה זוגית": "bed_double",
	"односпальная кровать": "bed_single", "single bed": "bed_single", "מיטת יחיד": "bed_single",
	"кровать": "bed_double", "bed": "bed_double", "מיטה": "bed_double",
	"детская кроватк": "crib", "crib": "crib", "מיטת תינוק": "crib",
	"матрас": "mattress", "mattress": "mattress", "מזרן": "mattress", "מזרון": "mattress",
	"коробк": "box_standard", "ящик": "box_standard", "box": "box_standard", "boxes": "box_standard", "קרטונים": "box_standard", "קרטון": "box_standard",
	"пианино": "piano", "рояль": "piano", "piano": "piano", "פסנתר": "piano",
	"сейф": "safe", "safe": "safe", "כספת": "safe",
	"беговая дорожк": "treadmill", "treadmill": "treadmill", "הליכון": "treadmill",
	"велосипед": "bicycle", "bicycle": "bicycle", "bike": "bicycle", "אופניים": "bicycle",
}

// aliasesByLength is the alias list sorted longest first, so "обеденный
// стол" wins over "стол".
var aliasesByLength = func() []string {
	out := make([]string, 0, len(itemAliases))
	for a := range itemAliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()

// CatalogLookup returns the catalog entry for a key.
func CatalogLookup(key string) (CatalogItem, bool) {
	c, ok := catalog[key]
	return c, ok
}

// ItemLabel returns the localized display name for a catalog key, falling
// back to the key itself.
func ItemLabel(key, lang string) string {
	c, ok := catalog[key]
	if !ok {
		return key
	}
	if l := c.Labels[lang]; l != "" {
		return l
	}
	return c.Labels[LangRU]
}
