package categorizer

import "github.com/davidbugayov/Financeanalyzer-sub008/internal/models"

// DefaultRules is the built-in rule table used when no categories.yaml is
// available. Order matters: the first matching rule wins.
func DefaultRules() []models.CategoryRule {
	return []models.CategoryRule{
		{Name: models.CategoryTransfers, Keywords: []string{"внешний перевод", "внутренний перевод", "перевод с карты", "перевод на карту", "переводы"}},
		{Name: models.CategoryTopUps, Keywords: []string{"пополнение", "перевод от", "внесение наличных", "зачисление"}},
		{Name: models.CategoryGroceries, Keywords: []string{"близкий", "самбери", "пятёрочка", "pyaterochka", "магнит", "magnit", "вкусвилл", "ашан", "перекрёсток", "супермаркет", "продукты", "groceries", "supermarket", "магазин причал"}},
		{Name: models.CategoryGroceries, Keywords: []string{"лента"}, Exclude: []string{"интернет"}},
		{Name: models.CategoryGroceries, Keywords: []string{"метро"}, Exclude: []string{"транспорт", "метрополитен"}},
		{Name: models.CategoryRestaurants, Keywords: []string{"кафе", "ресторан", "рестораны", "додо", "dodo", "бургер", "burger", "макдоналдс", "mcdonald", "кофе", "coffee"}},
		{Name: models.CategoryTransport, Keywords: []string{"такси", "yandex.go", "uber", "яндекс.такси", "метрополитен", "metro", "автобус", "трамвай", "транспорт"}},
		{Name: models.CategoryOzon, Keywords: []string{"ozon", "озон"}},
		{Name: models.CategoryOnline, Keywords: []string{"яндекс.маркет", "yandex market", "wildberries", "вайлдберриз", "aliexpress", "алиэкспресс", "вайме", "vimemc"}},
		{Name: models.CategoryOnline, Keywords: []string{"wb"}, Exclude: []string{"web"}},
		{Name: models.CategoryCar, Keywords: []string{"азс", "топливо", "бензин", "автозаправ", "парковк", "стоянк"}},
		{Name: models.CategoryPharmacy, Keywords: []string{"аптека", "apteka"}},
		{Name: models.CategoryHealth, Keywords: []string{"здоровье", "клиник", "врач", "доктор", "медицина"}},
		{Name: models.CategoryElectronics, Keywords: []string{"связной", "эльдорадо", "мвидео", "mvideo", "ситилинк", "citilink", "dns", "днс"}},
		{Name: models.CategoryUtilities, Keywords: []string{"жкх", "коммунал"}},
		{Name: models.CategoryTelecom, Keywords: []string{"связь", "мобильный", "мтс", "билайн", "мегафон", "tele2"}},
		{Name: models.CategoryEntertainment, Keywords: []string{"кино", "cinema", "развлечения"}},
		{Name: models.CategorySubscriptions, Keywords: []string{"подписк", "subscription", "spotify", "netflix", "okko", "кинопоиск"}},
		{Name: models.CategoryBankServices, Keywords: []string{"комиссия", "обслуживание", "процент", "interest"}},
		{Name: models.CategoryCash, Keywords: []string{"выдача наличных", "снятие наличных", "банкомат", "atm"}},
	}
}
