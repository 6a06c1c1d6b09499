package services

import (
	"bloxstore/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultSettings are used until the settings row loads, and in its absence.
func DefaultSettings() models.SiteSettings {
	return models.SiteSettings{
		ID:                1,
		RobloxGamePassURL: "https://www.roblox.com/game-pass/configure",
		ImportantNote:     "يرجى التأكد من ادخال اسم المستخدم الصحيح.",
		WelcomeMessage:    "مرحباً بكم في متجر Bloxon",
		ServerStatus:      models.ServerOnline,
	}
}

func bundled(id, name, description string, price int64, typ models.ProductType, stock int) models.Product {
	return models.Product{
		ID:             id,
		Name:           name,
		Description:    description,
		Price:          decimal.NewFromInt(price),
		Type:           typ,
		RareItems:      []string{},
		PaymentMethods: []models.PaymentMethod{models.PaymentRoblox},
		InStock:        true,
		StockQuantity:  stock,
	}
}

// DefaultProducts is the bundled catalog. Remote products override entries by id.
func DefaultProducts() []models.Product {
	return []models.Product{
		bundled("acc-custom", "طلب حساب خاص (Custom Order)",
			"صمم حسابك بنفسك! اكتب تفاصيل طلبك في خانة \"الملاحظات\" عند الدفع وسيتم تحديد السعر.",
			0, models.ProductAccount, 999),
		bundled("style-godhuman", "أسلوب الإله البشر (Godhuman)",
			"الأسلوب الأقوى في اللعبة حالياً.", 2500, models.ProductStyle, 5),
		bundled("style-sanguine", "الفن الدموي (Sanguine Art)",
			"أسلوب مصاصي الدماء. يمتاز بسرقة الحياة ومدى ضربات واسع.", 2200, models.ProductStyle, 5),
		bundled("style-sharkman", "كاراتيه الرجل القرش (Sharkman Karate)",
			"الأفضل لتجميع الموارد.", 800, models.ProductStyle, 15),
		bundled("sword-cdk", "سيف CDK (Cursed Dual Katana)",
			"السيف الأسطوري المزدوج.", 1800, models.ProductSword, 5),
		bundled("sword-ttk", "ثلاثية الكاتانا الحقيقية (True Triple Katana)",
			"ثلاث سيوف بضرر فتاك.", 1100, models.ProductSword, 10),
	}
}
