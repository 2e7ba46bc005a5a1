package models

// Canonical category names produced by the category detector.
const (
	CategoryUncategorized = "Без категории"
	CategoryTransfers     = "Переводы"
	CategoryTopUps        = "Пополнения"
	CategoryGroceries     = "Продукты"
	CategoryRestaurants   = "Кафе и рестораны"
	CategoryTransport     = "Транспорт"
	CategoryOzon          = "Покупки Ozon"
	CategoryOnline        = "Онлайн-покупки"
	CategoryCar           = "Автомобиль"
	CategoryPharmacy      = "Аптека"
	CategoryHealth        = "Здоровье"
	CategoryElectronics   = "Электроника"
	CategoryUtilities     = "ЖКХ"
	CategoryTelecom       = "Связь"
	CategoryEntertainment = "Развлечения"
	CategorySubscriptions = "Подписки"
	CategoryBankServices  = "Банковские услуги"
	CategoryCash          = "Наличные"
)

// Currency codes used when a statement does not state one.
const (
	CurrencyRUB = "RUB"
	CurrencyUSD = "USD"
)

// File permissions
const (
	PermissionFile      = 0600
	PermissionDirectory = 0750
)
