package services

import (
	"strings"
)

// Language is a display language of the storefront.
type Language string

const (
	LangArabic  Language = "ar"
	LangEnglish Language = "en"

	DefaultLanguage = LangArabic
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangArabic || l == LangEnglish
}

// Message keys.
const (
	MsgCartDuplicate         = "cart_duplicate"
	MsgCartOutOfStock        = "cart_out_of_stock"
	MsgCheckoutMissingFields = "checkout_missing_fields"
	MsgAccountBanned         = "account_banned"
	MsgAuthInvalidLogin      = "auth_invalid_login"
	MsgAuthAlreadyRegistered = "auth_already_registered"
	MsgAuthWeakPassword      = "auth_weak_password"
	MsgAuthUnexpected        = "auth_unexpected"
	MsgCustomPrice           = "custom_price"
	MsgTotalLater            = "total_later"
	MsgNoNotes               = "no_notes"
	MsgNotifPaidTitle        = "notif_paid_title"
	MsgNotifPaidBody         = "notif_paid_body"
	MsgNotifDeliveredTitle   = "notif_delivered_title"
	MsgNotifDeliveredBody    = "notif_delivered_body"
	MsgNotifUpdateTitle      = "notif_update_title"
	MsgNotifUpdateBody       = "notif_update_body"
)

var messages = map[Language]map[string]string{
	LangArabic: {
		MsgCartDuplicate:         "هذا المنتج موجود بالفعل في السلة",
		MsgCartOutOfStock:        "عذراً، هذا المنتج غير متوفر حالياً.",
		MsgCheckoutMissingFields: "يرجى تعبئة جميع البيانات المطلوبة",
		MsgAccountBanned:         "حسابك محظور",
		MsgAuthInvalidLogin:      "البريد الإلكتروني أو كلمة المرور غير صحيحة",
		MsgAuthAlreadyRegistered: "هذا البريد الإلكتروني مسجل بالفعل",
		MsgAuthWeakPassword:      "كلمة المرور يجب أن تكون 6 أحرف على الأقل",
		MsgAuthUnexpected:        "حدث خطأ غير متوقع",
		MsgCustomPrice:           "حسب الطلب",
		MsgTotalLater:            "يحدد لاحقاً",
		MsgNoNotes:               "لا يوجد",
		MsgNotifPaidTitle:        "تم استلام الدفع ✅",
		MsgNotifPaidBody:         "تم التحقق من عملية الدفع لطلبك \"%s\". جاري العمل على التسليم.",
		MsgNotifDeliveredTitle:   "تم تسليم الطلب 🎉",
		MsgNotifDeliveredBody:    "ألف مبروك! تم تسليم طلبك \"%s\" بنجاح. شكراً لثقتكم بنا.",
		MsgNotifUpdateTitle:      "تحديث حالة الطلب",
		MsgNotifUpdateBody:       "تم تحديث حالة طلبك \"%s\" إلى %s.",
	},
	LangEnglish: {
		MsgCartDuplicate:         "This product is already in your cart",
		MsgCartOutOfStock:        "Sorry, this product is currently unavailable.",
		MsgCheckoutMissingFields: "Please fill in all required fields",
		MsgAccountBanned:         "Your account is banned",
		MsgAuthInvalidLogin:      "Incorrect email or password",
		MsgAuthAlreadyRegistered: "This email is already registered",
		MsgAuthWeakPassword:      "Password must be at least 6 characters",
		MsgAuthUnexpected:        "An unexpected error occurred",
		MsgCustomPrice:           "custom",
		MsgTotalLater:            "to be determined",
		MsgNoNotes:               "none",
		MsgNotifPaidTitle:        "Payment received ✅",
		MsgNotifPaidBody:         "Payment for your order \"%s\" was verified. Delivery is in progress.",
		MsgNotifDeliveredTitle:   "Order delivered 🎉",
		MsgNotifDeliveredBody:    "Congratulations! Your order \"%s\" was delivered. Thank you for your trust.",
		MsgNotifUpdateTitle:      "Order status update",
		MsgNotifUpdateBody:       "Your order \"%s\" is now %s.",
	},
}

// Message returns the text of key in lang, falling back to the default language.
func Message(lang Language, key string) string {
	if m, ok := messages[lang]; ok {
		if text, ok := m[key]; ok {
			return text
		}
	}
	if text, ok := messages[DefaultLanguage][key]; ok {
		return text
	}
	return key
}

// authErrorPatterns maps substrings of auth collaborator messages to message keys.
var authErrorPatterns = []struct {
	substr string
	key    string
}{
	{"invalid login credentials", MsgAuthInvalidLogin},
	{"already registered", MsgAuthAlreadyRegistered},
	{"password should be", MsgAuthWeakPassword},
}

// TranslateAuthError turns an auth failure into shopper-facing text.
// Unrecognized messages are returned verbatim.
func TranslateAuthError(lang Language, err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		return Message(lang, MsgAuthUnexpected)
	}
	lower := strings.ToLower(msg)
	for _, p := range authErrorPatterns {
		if strings.Contains(lower, p.substr) {
			return Message(lang, p.key)
		}
	}
	return msg
}
