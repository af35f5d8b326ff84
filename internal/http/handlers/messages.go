package handlers

import (
	"context"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"smartstudio/internal/middleware"
)

// Message keys double as the English text.
const (
	msgLoginRequired    = "Sign in required"
	msgNotEnoughCredits = "Not enough credits"
	msgCreditsRemaining = "%d free generations left"
	msgMissingBrief     = "Missing brief data"
	msgMissingFields    = "Missing required fields"
	msgInvalidPayload   = "Invalid request body"
	msgNotConfigured    = "Service not configured"
	msgGenerateFailed   = "Failed to generate concepts"
	msgUpdateFailed     = "Failed to update image"
	msgCheckoutFailed   = "Failed to create checkout session"
	msgPaymentRejected  = "Failed to create payment"
	msgInvalidPlan      = "Invalid plan specified"
	msgPaymentsDisabled = "Payment system not configured"
	msgInvalidAction    = "Invalid action. Use ?action=create-checkout or ?action=webhook"
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgRateLimited      = "Too many requests, try again shortly"
	msgInternal         = "Internal server error"
)

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	he := map[string]string{
		msgLoginRequired:    "נדרשת התחברות",
		msgNotEnoughCredits: "אין מספיק קרדיטים",
		msgMissingBrief:     "חסרים נתוני בריף",
		msgMissingFields:    "חסרים שדות חובה",
		msgInvalidPayload:   "גוף הבקשה אינו תקין",
		msgNotConfigured:    "השירות אינו מוגדר",
		msgGenerateFailed:   "יצירת הקונספטים נכשלה",
		msgUpdateFailed:     "עדכון התמונה נכשל",
		msgCheckoutFailed:   "יצירת התשלום נכשלה",
		msgPaymentRejected:  "יצירת התשלום נכשלה",
		msgInvalidPlan:      "התוכנית שנבחרה אינה תקינה",
		msgPaymentsDisabled: "מערכת התשלומים אינה מוגדרת",
		msgMethodNotAllowed: "שיטת הבקשה אינה נתמכת",
		msgNotFound:         "לא נמצא",
		msgRateLimited:      "יותר מדי בקשות, נסו שוב בעוד רגע",
		msgInternal:         "שגיאת שרת",
	}
	for key, text := range he {
		_ = b.SetString(language.Hebrew, key, text)
	}
	_ = b.Set(language.Hebrew, msgCreditsRemaining, plural.Selectf(1, "%d",
		"=0", "נגמרו הקרדיטים החינמיים שלך. שדרג לפרימיום כדי להמשיך.",
		"=1", "נותרה לך יצירה חינמית אחת",
		plural.Other, "נותרו לך %d יצירות חינמיות",
	))
	_ = b.Set(language.English, msgCreditsRemaining, plural.Selectf(1, "%d",
		"=0", "You have used all your free generations. Upgrade to premium to continue.",
		"=1", "You have 1 free generation left",
		plural.Other, "You have %d free generations left",
	))
	return b
}

func printerFor(ctx context.Context) *message.Printer {
	return message.NewPrinter(middleware.LocaleFromContext(ctx), message.Catalog(messages))
}

// localize renders key in the request's negotiated language.
func localize(ctx context.Context, key message.Reference, args ...any) string {
	return printerFor(ctx).Sprintf(key, args...)
}
