package update

// Health item ids reported by the synchronizer.
const (
	healthCategorySync    = "sync"
	healthCategoryScraper = "scraper"

	HealthScraperFeed      = "scraper-feed"
	HealthReplacementsFeed = "replacements-feed"
	HealthScript           = "imdbplus-script"
)

// HealthReporter records the state of the remote feeds and of the installed
// script.
type HealthReporter interface {
	RegisterItemStr(category, id, name string)
	SetErrorStr(category, id, message string)
	SetWarningStr(category, id, message string)
	ClearStatusStr(category, id string)
}

// SetHealth registers the synchronizer's health items with h. It must be
// called before Start.
func (s *Service) SetHealth(h HealthReporter) {
	h.RegisterItemStr(healthCategorySync, HealthScraperFeed, "Scraper script download")
	h.RegisterItemStr(healthCategorySync, HealthReplacementsFeed, "Rename database download")
	h.RegisterItemStr(healthCategoryScraper, HealthScript, "IMDb+ scraper script")
	s.health = h
}

func (s *Service) reportCycle(result CycleResult) {
	if s.health == nil {
		return
	}

	switch sc := result.Scraper; {
	case !sc.Downloaded:
		s.health.SetErrorStr(healthCategorySync, HealthScraperFeed, sc.Error)
	case sc.Error != "":
		s.health.SetWarningStr(healthCategorySync, HealthScraperFeed, sc.Error)
	default:
		s.health.ClearStatusStr(healthCategorySync, HealthScraperFeed)
	}

	if msg := result.Replacements.Error; msg != "" {
		s.health.SetErrorStr(healthCategorySync, HealthReplacementsFeed, msg)
	} else {
		s.health.ClearStatusStr(healthCategorySync, HealthReplacementsFeed)
	}
}

func (s *Service) reportScript(installed bool) {
	if s.health == nil {
		return
	}
	if installed {
		s.health.ClearStatusStr(healthCategoryScraper, HealthScript)
		return
	}
	s.health.SetWarningStr(healthCategoryScraper, HealthScript, "The IMDb+ scraper script is not installed")
}
