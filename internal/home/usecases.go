package home

// UseCase is a built-in example prompt. Its text lives in the locale
// catalogs under useCases.<Key>.
type UseCase struct {
	Key   string
	Icons []string
}

var useCases = []UseCase{
	{Key: "calendarPrepNotes", Icons: []string{"calendar.google.com", "docs.google.com"}},
	{Key: "inboxPromoCleanup", Icons: []string{"mail.google.com"}},
	{Key: "competitorPricingDeck", Icons: []string{"slides.google.com", "sheets.google.com"}},
	{Key: "notionApiAudit", Icons: []string{"notion.so"}},
	{Key: "stagingVsProdVisual", Icons: []string{"google.com"}},
	{Key: "prodBrokenLinks", Icons: []string{"google.com"}},
	{Key: "portfolioMonitoring", Icons: []string{"finance.yahoo.com"}},
	{Key: "jobApplicationAutomation", Icons: []string{"linkedin.com"}},
	{Key: "eventCalendarBuilder", Icons: []string{"eventbrite.com", "calendar.google.com"}},
}

// Example is a use case with its text resolved for the current locale.
type Example struct {
	Key         string
	Title       string
	Description string
	Prompt      string
	Icons       []string
}

func localize(tr Translator, uc UseCase) Example {
	prefix := "useCases." + uc.Key + "."
	return Example{
		Key:         uc.Key,
		Title:       tr.T(prefix + "title"),
		Description: tr.T(prefix + "description"),
		Prompt:      tr.T(prefix + "prompt"),
		Icons:       append([]string(nil), uc.Icons...),
	}
}
