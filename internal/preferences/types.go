package preferences

// Option keys as read by the IMDb+ scraper script.
const (
	KeyOriginalTitle     = "global_options_original_title"
	KeyForeignTitle      = "global_options_foreign_title"
	KeyForeignFirst      = "global_options_foreign_first"
	KeyUkRating          = "global_options_uk_rating"
	KeyIMDbScore         = "global_options_imdb_score"
	KeyIMDbMetaScore     = "global_options_imdb_metascore"
	KeyLongSummary       = "global_options_long_summary"
	KeyRottenMeter       = "global_options_rotten_meter"
	KeyRottenAverage     = "global_options_rotten_average"
	KeyRottenTopCritics  = "global_options_rotten_top_critics"
	KeySpecialEdition    = "global_options_special_edition"
	KeyRenameTitles      = "global_options_rename_titles"
	KeySingleScore       = "global_options_single_score"
	KeyMinIMDbVotes      = "global_options_min_imdb_votes"
	KeyRefreshAllFields  = "global_options_refresh_all_fields"
	KeyOneWriterDirector = "global_options_one_writer_director"
	KeySecondarySummary  = "global_options_secondary_summary"
	KeySecondaryDetails  = "global_options_secondary_details"
	KeyCountryFilter     = "global_options_country_filter"
	KeyLanguageFilter    = "global_options_language_filter"
)

// Preferences contains the scraper options shown to the user.
type Preferences struct {
	OriginalTitle     bool   `json:"originalTitle" yaml:"original_title"`
	ForeignTitle      bool   `json:"foreignTitle" yaml:"foreign_title"`
	ForeignFirst      bool   `json:"foreignFirst" yaml:"foreign_first"`
	UkRating          bool   `json:"ukRating" yaml:"uk_rating"`
	IMDbScore         bool   `json:"imdbScore" yaml:"imdb_score"`
	IMDbMetaScore     bool   `json:"imdbMetaScore" yaml:"imdb_metascore"`
	LongSummary       bool   `json:"longSummary" yaml:"long_summary"`
	RottenMeter       bool   `json:"rottenMeter" yaml:"rotten_meter"`
	RottenAverage     bool   `json:"rottenAverage" yaml:"rotten_average"`
	RottenTopCritics  bool   `json:"rottenTopCritics" yaml:"rotten_top_critics"`
	SpecialEdition    bool   `json:"specialEdition" yaml:"special_edition"`
	RenameTitles      bool   `json:"renameTitles" yaml:"rename_titles"`
	SingleScore       bool   `json:"singleScore" yaml:"single_score"`
	MinIMDbVotes      bool   `json:"minImdbVotes" yaml:"min_imdb_votes"`
	RefreshAllFields  bool   `json:"refreshAllFields" yaml:"refresh_all_fields"`
	OneWriterDirector bool   `json:"oneWriterDirector" yaml:"one_writer_director"`
	SecondarySummary  bool   `json:"secondarySummary" yaml:"secondary_summary"`
	SecondaryDetails  string `json:"secondaryDetails" yaml:"secondary_details"`
	CountryFilter     string `json:"countryFilter" yaml:"country_filter"`
	LanguageFilter    string `json:"languageFilter" yaml:"language_filter"`
}

// DefaultPreferences returns the values used when an option is absent.
func DefaultPreferences() Preferences {
	return Preferences{
		SpecialEdition:   true,
		RenameTitles:     true,
		SecondaryDetails: "01",
		CountryFilter:    "us|ca|gb|ie|au|nz",
		LanguageFilter:   "en",
	}
}

// boolOption binds a boolean field to its document entry.
type boolOption struct {
	key   string
	id    string
	field func(*Preferences) *bool
}

type stringOption struct {
	key   string
	id    string
	field func(*Preferences) *string
}

// Entries are written in legacy id order.
var boolOptions = []boolOption{
	{KeyOriginalTitle, "01", func(p *Preferences) *bool { return &p.OriginalTitle }},
	{KeyForeignTitle, "02", func(p *Preferences) *bool { return &p.ForeignTitle }},
	{KeyForeignFirst, "03", func(p *Preferences) *bool { return &p.ForeignFirst }},
	{KeyUkRating, "04", func(p *Preferences) *bool { return &p.UkRating }},
	{KeyIMDbScore, "05", func(p *Preferences) *bool { return &p.IMDbScore }},
	{KeyIMDbMetaScore, "06", func(p *Preferences) *bool { return &p.IMDbMetaScore }},
	{KeyLongSummary, "07", func(p *Preferences) *bool { return &p.LongSummary }},
	{KeyRottenMeter, "08", func(p *Preferences) *bool { return &p.RottenMeter }},
	{KeyRottenAverage, "09", func(p *Preferences) *bool { return &p.RottenAverage }},
	{KeyRottenTopCritics, "10", func(p *Preferences) *bool { return &p.RottenTopCritics }},
	{KeySpecialEdition, "11", func(p *Preferences) *bool { return &p.SpecialEdition }},
	{KeyRenameTitles, "12", func(p *Preferences) *bool { return &p.RenameTitles }},
	{KeySingleScore, "13", func(p *Preferences) *bool { return &p.SingleScore }},
	{KeyMinIMDbVotes, "14", func(p *Preferences) *bool { return &p.MinIMDbVotes }},
	{KeyRefreshAllFields, "15", func(p *Preferences) *bool { return &p.RefreshAllFields }},
	{KeyOneWriterDirector, "16", func(p *Preferences) *bool { return &p.OneWriterDirector }},
	{KeySecondarySummary, "96", func(p *Preferences) *bool { return &p.SecondarySummary }},
}

var stringOptions = []stringOption{
	{KeySecondaryDetails, "97", func(p *Preferences) *string { return &p.SecondaryDetails }},
	{KeyCountryFilter, "98", func(p *Preferences) *string { return &p.CountryFilter }},
	{KeyLanguageFilter, "99", func(p *Preferences) *string { return &p.LanguageFilter }},
}

// Entry is one option as displayed by listings.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	ID    string `json:"id" yaml:"id"`
	Value string `json:"value" yaml:"value"`
}

// Entries flattens p into document order.
func (p Preferences) Entries() []Entry {
	out := make([]Entry, 0, len(boolOptions)+len(stringOptions))
	for _, o := range boolOptions {
		v := "false"
		if *o.field(&p) {
			v = "true"
		}
		out = append(out, Entry{Key: o.key, ID: o.id, Value: v})
	}
	for _, o := range stringOptions {
		out = append(out, Entry{Key: o.key, ID: o.id, Value: *o.field(&p)})
	}
	return out
}
