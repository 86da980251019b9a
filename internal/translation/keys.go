package translation

// Key names a user-facing label.
type Key string

const (
	BoolOn              Key = "BoolOn"
	BoolOff             Key = "BoolOff"
	Yes                 Key = "Yes"
	No                  Key = "No"
	Cancel              Key = "Cancel"
	First               Key = "First"
	IMDbInfo            Key = "IMDbInfo"
	Update              Key = "Update"
	UpdateAll           Key = "UpdateAll"
	SelectAll           Key = "SelectAll"
	NoneFound           Key = "NoneFound"
	NumberOfMovies      Key = "NumberOfMovies"
	ScraperOptionsTitle Key = "ScraperOptionsTitle"
	DefaultDescription  Key = "DefaultDescription"

	OriginalTitle                Key = "OriginalTitle"
	OriginalTitleDescription     Key = "OriginalTitleDescription"
	AddForeignTitle              Key = "AddForeignTitle"
	AddForeignTitleDescription   Key = "AddForeignTitleDescription"
	ForeignTitleFirst            Key = "ForeignTitleFirst"
	ForeignTitleFirstDescription Key = "ForeignTitleFirstDescription"
	UkRating                     Key = "UkRating"
	UkRatingDescription          Key = "UkRatingDescription"
	IMDbScore                    Key = "IMDbScore"
	IMDbScoreDescription         Key = "IMDbScoreDescription"
	IMDbMetaScore                Key = "IMDbMetaScore"
	IMDbMetaScoreDescription     Key = "IMDbMetaScoreDescription"
	LongSummary                  Key = "LongSummary"
	LongSummaryDescription       Key = "LongSummaryDescription"
	RottenMeter                  Key = "RottenMeter"
	RottenMeterDescription       Key = "RottenMeterDescription"
	RottenAverage                Key = "RottenAverage"
	RottenAverageDescription     Key = "RottenAverageDescription"
	RottenTopCritics             Key = "RottenTopCritics"
	RottenTopCriticsDescription  Key = "RottenTopCriticsDescription"
	SpecialEditions              Key = "SpecialEditions"
	SpecialEditionsDescription   Key = "SpecialEditionsDescription"
	RenameTitles                 Key = "RenameTitles"
	RenameTitlesDescription      Key = "RenameTitlesDescription"
	SingleScore                  Key = "SingleScore"
	SingleScoreDescription       Key = "SingleScoreDescription"
	MinIMDbVotes                 Key = "MinIMDbVotes"
	MinIMDbVotesDescription      Key = "MinIMDbVotesDescription"
	RefreshAllFields             Key = "RefreshAllFields"
	RefreshAllFieldsDescription  Key = "RefreshAllFieldsDescription"
	OneWriterDirector            Key = "OneWriterDirector"
	OneWriterDirectorDescription Key = "OneWriterDirectorDescription"
	SecondarySummary             Key = "SecondarySummary"
	SecondarySummaryDescription  Key = "SecondarySummaryDescription"
	SecondaryDetails             Key = "SecondaryDetails"
	SecondaryDetailsDescription  Key = "SecondaryDetailsDescription"
	CountryFilter                Key = "CountryFilter"
	CountryFilterDescription     Key = "CountryFilterDescription"
	LanguageFilter               Key = "LanguageFilter"
	LanguageFilterDescription    Key = "LanguageFilterDescription"

	ForceIMDbPlus            Key = "ForceIMDbPlus"
	ForceIMDbPlusDescription Key = "ForceIMDbPlusDescription"
	ForceIMDbPlusComplete    Key = "ForceIMDbPlusComplete"
	NoSourcesFound           Key = "NoSourcesFound"
	SelectSources            Key = "SelectSources"

	RefreshMovies             Key = "RefreshMovies"
	RefreshingMovies          Key = "RefreshingMovies"
	RefreshCancel             Key = "RefreshCancel"
	RefreshMoviesDescription  Key = "RefreshMoviesDescription"
	RefreshMoviesNotification Key = "RefreshMoviesNotification"
	RefreshMoviesCancelled    Key = "RefreshMoviesCancelled"
	RefreshMovieStatus        Key = "RefreshMovieStatus"
	UpdateReplacementOnly     Key = "UpdateReplacementOnly"

	InfoPluginVersion            Key = "InfoPluginVersion"
	InfoScraperAuthor            Key = "InfoScraperAuthor"
	InfoScraperVersion           Key = "InfoScraperVersion"
	InfoScraperPriority          Key = "InfoScraperPriority"
	InfoScraperPublished         Key = "InfoScraperPublished"
	InfoScraperLastUpdateCheck   Key = "InfoScraperLastUpdateCheck"
	InfoMoviesIMDbPlusPrimary    Key = "InfoMoviesIMDbPlusPrimary"
	InfoMoviesOtherPrimary       Key = "InfoMoviesOtherPrimary"
	InfoReplacementsVersion      Key = "InfoReplacementsVersion"
	InfoReplacementsPublished    Key = "InfoReplacementsPublished"
	InfoReplacementEntries       Key = "InfoReplacementEntries"
	InfoCustomReplacementEntries Key = "InfoCustomReplacementEntries"
	UpdatedScraperScript         Key = "UpdatedScraperScript"
	LastScraperUpdate            Key = "LastScraperUpdate"
)

// defaults holds the English text of every key. Placeholders use {0}, {1}, ...
var defaults = map[Key]string{
	BoolOn:              "On",
	BoolOff:             "Off",
	Yes:                 "Yes",
	No:                  "No",
	Cancel:              "Cancel",
	First:               "First",
	IMDbInfo:            "IMDb+ Info",
	Update:              "Update",
	UpdateAll:           "Update All",
	SelectAll:           "Select All",
	NoneFound:           "Nothing found",
	NumberOfMovies:      "{0}/{1} Movies",
	ScraperOptionsTitle: "IMDb+ Scraper Options",
	DefaultDescription:  "Highlight any of the above options and a more detailed explanation will be shown here.",

	OriginalTitle:                "Use the original title from the movie",
	OriginalTitleDescription:     "Off = Always force English title\nOn = Use original title for foreign movies",
	AddForeignTitle:              "Add the foreign title",
	AddForeignTitleDescription:   "Off = Keep title as-is\nOn = Add the original title in parentheses\n\nExample: Black Book (Zwartboek)",
	ForeignTitleFirst:            "Start the title with the foreign one first",
	ForeignTitleFirstDescription: "Off = English (Foreign)\nOn = Foreign (English)\n\nExample: Zwartboek (Black Book)",
	UkRating:                     "British BBFC certification system",
	UkRatingDescription:          "Off = Use the American MPAA ratings\nOn = Enable the British BBFC ratings",
	IMDbScore:                    "IMDb Score",
	IMDbScoreDescription:         "Off = Use RottenTomatoes website\nOn = Restrict to imdb.com website only",
	IMDbMetaScore:                "Metacritics MetaScore",
	IMDbMetaScoreDescription:     "Off = Main imdb.com score is used\nOn = Use Metacritics Metascore instead",
	LongSummary:                  "Use long summaries which may contain spoilers",
	LongSummaryDescription:       "Off = Short summary to describe movie plot\nOn = Long summary (might contain spoilers)",
	RottenMeter:                  "RottenTomatoes TomatoMeter",
	RottenMeterDescription:       "Off = RottenTomatoes 'Audience' ratings\nOn = RottenTomatoes 'TomatoMeter' ratings",
	RottenAverage:                "RottenTomatoes average rating",
	RottenAverageDescription:     "Off = RottenTomatoes 'Percentage' rating\nOn = RottenTomatoes 'Average' rating",
	RottenTopCritics:             "RottenTomatoes top critics",
	RottenTopCriticsDescription:  "Off = RottenTomatoes 'All' critics\nOn = RottenTomatoes 'Top' critics",
	SpecialEditions:              "Special editions rename tagging support",
	SpecialEditionsDescription:   "Off = Keep title as-is\nOn = Add special editions tag to the title",
	RenameTitles:                 "Rename titles so that series are grouped together",
	RenameTitlesDescription:      "Off = Use title as-is\nOn = Rename title so that series will group together",
	SingleScore:                  "Single score rating system",
	SingleScoreDescription:       "Off = Use average rating system\nOn = Single rating value is used",
	MinIMDbVotes:                 "Minimum amount of IMDb votes required",
	MinIMDbVotesDescription:      "Off = Always use imdb.com score\nOn = Only use imdb.com scores with 20+ votes",
	RefreshAllFields:             "Refresh all of the fields",
	RefreshAllFieldsDescription:  "Off = Only update a few things\nOn = Update everything\n\nNote: This setting disables the rename system for existing movies.",
	OneWriterDirector:            "Limit import to only one writer and director",
	OneWriterDirectorDescription: "Off = Get all the names for writers and directors\nOn = Only get the first writer and director",
	SecondarySummary:             "Fallback to English summary if foreign one is missing",
	SecondarySummaryDescription:  "Off = Show nothing if foreign summary is missing\nOn = Use the English summary instead",
	SecondaryDetails:             "Obtain additional information in the following language",
	SecondaryDetailsDescription:  "Certain information such as the summary can be obtained in a different language.",
	CountryFilter:                "Advanced: Country filter",
	CountryFilterDescription:     "Countries whose movies never use a foreign title.\n\nDefault: 'us|ca|gb|ie|au|nz'",
	LanguageFilter:               "Advanced: Language filter",
	LanguageFilterDescription:    "Languages whose movies keep their original title.\n\nDefault: 'en'",

	ForceIMDbPlus:            "Force IMDb+",
	ForceIMDbPlusDescription: "Are you ready to force all your existing movies to use IMDb+ as their scraper source?",
	ForceIMDbPlusComplete:    "Successfully switched {0}/{1} movies to the IMDb+ source.",
	NoSourcesFound:           "No Movies found to convert to IMDb+\nsource!",
	SelectSources:            "Select Sources to Convert to IMDb+",

	RefreshMovies:             "Refresh Movies",
	RefreshingMovies:          "Refreshing Movies",
	RefreshCancel:             "Cancel Refresh",
	RefreshMoviesDescription:  "Are you sure you want to refresh all movies\nthat have IMDb+ as their primary source?",
	RefreshMoviesNotification: "IMDb+ movie refresh is now complete.",
	RefreshMoviesCancelled:    "IMDb+ movie refresh was cancelled.",
	RefreshMovieStatus:        "Refreshing {0} Movies: {1}%",
	UpdateReplacementOnly:     "Update Replacements Only",

	InfoPluginVersion:            "Plugin Version: v{0}",
	InfoScraperAuthor:            "Scraper Author: {0}",
	InfoScraperVersion:           "Scraper Version: v{0}",
	InfoScraperPriority:          "Scraper Priority: {0}",
	InfoScraperPublished:         "Scraper Published: {0}",
	InfoScraperLastUpdateCheck:   "Scraper Last Update Check: {0}",
	InfoMoviesIMDbPlusPrimary:    "Movies using IMDb+ as scraper source: {0}",
	InfoMoviesOtherPrimary:       "Movies that use a different scraper: {0}",
	InfoReplacementsVersion:      "Replacements Version: v{0}",
	InfoReplacementsPublished:    "Replacements Published: {0}",
	InfoReplacementEntries:       "Replacement Entries: {0}",
	InfoCustomReplacementEntries: "Replacement Entries (Custom): {0}",
	UpdatedScraperScript:         "MovingPictures has been updated with IMDb+ Scraper script v{0}",
	LastScraperUpdate:            "Last Scraper Update",
}
