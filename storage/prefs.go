package storage

// Language is a persisted UI language preference.
type Language string

const (
	// LanguageEnglish is the default catalog.
	LanguageEnglish Language = "en"
	// LanguageKhmer is the Khmer catalog.
	LanguageKhmer Language = "km"
)

// DefaultLanguage is used when no preference has been persisted.
const DefaultLanguage = LanguageEnglish

// Valid reports whether l names a known language catalog.
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageKhmer:
		return true
	}
	return false
}

// ThemeMode is a persisted appearance preference. ThemeSystem defers to the
// device color scheme.
type ThemeMode string

const (
	// ThemeLight forces the light palette.
	ThemeLight ThemeMode = "light"
	// ThemeDark forces the dark palette.
	ThemeDark ThemeMode = "dark"
	// ThemeSystem follows the device color scheme.
	ThemeSystem ThemeMode = "system"
)

// DefaultTheme is used when no preference has been persisted.
const DefaultTheme = ThemeSystem

// Valid reports whether t is a known theme mode.
func (t ThemeMode) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}
