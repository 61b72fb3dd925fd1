package language

// Language describes one entry of the built-in code table.
type Language struct {
	Code    string // ISO 639-1, or the provider code for regional variants
	Alpha3  string // ISO 639-2/T
	Alpha3B string // ISO 639-2/B when it differs
	Name    string
	Aliases []string // lower-case names providers use
}

var table = []Language{
	{Code: "en", Alpha3: "eng", Name: "English", Aliases: []string{"english"}},
	{Code: "es", Alpha3: "spa", Name: "Spanish", Aliases: []string{"spanish", "castilian"}},
	{Code: "fr", Alpha3: "fra", Alpha3B: "fre", Name: "French", Aliases: []string{"french"}},
	{Code: "de", Alpha3: "deu", Alpha3B: "ger", Name: "German", Aliases: []string{"german"}},
	{Code: "it", Alpha3: "ita", Name: "Italian", Aliases: []string{"italian"}},
	{Code: "pt", Alpha3: "por", Name: "Portuguese", Aliases: []string{"portuguese"}},
	{Code: "pb", Alpha3: "pob", Name: "Portuguese (BR)", Aliases: []string{"brazilian portuguese", "brazillian portuguese", "portuguese (brazil)", "pt-br"}},
	{Code: "ja", Alpha3: "jpn", Name: "Japanese", Aliases: []string{"japanese"}},
	{Code: "ko", Alpha3: "kor", Name: "Korean", Aliases: []string{"korean"}},
	{Code: "zh", Alpha3: "zho", Alpha3B: "chi", Name: "Chinese", Aliases: []string{"chinese", "chinese bg code", "big 5 code"}},
	{Code: "ru", Alpha3: "rus", Name: "Russian", Aliases: []string{"russian"}},
	{Code: "ar", Alpha3: "ara", Name: "Arabic", Aliases: []string{"arabic"}},
	{Code: "hi", Alpha3: "hin", Name: "Hindi", Aliases: []string{"hindi"}},
	{Code: "nl", Alpha3: "nld", Alpha3B: "dut", Name: "Dutch", Aliases: []string{"dutch"}},
	{Code: "pl", Alpha3: "pol", Name: "Polish", Aliases: []string{"polish"}},
	{Code: "sv", Alpha3: "swe", Name: "Swedish", Aliases: []string{"swedish"}},
	{Code: "da", Alpha3: "dan", Name: "Danish", Aliases: []string{"danish"}},
	{Code: "no", Alpha3: "nor", Name: "Norwegian", Aliases: []string{"norwegian", "nb", "nob"}},
	{Code: "fi", Alpha3: "fin", Name: "Finnish", Aliases: []string{"finnish"}},
	{Code: "th", Alpha3: "tha", Name: "Thai", Aliases: []string{"thai"}},
	{Code: "vi", Alpha3: "vie", Name: "Vietnamese", Aliases: []string{"vietnamese"}},
	{Code: "id", Alpha3: "ind", Name: "Indonesian", Aliases: []string{"indonesian"}},
	{Code: "ms", Alpha3: "msa", Alpha3B: "may", Name: "Malay", Aliases: []string{"malay"}},
	{Code: "tr", Alpha3: "tur", Name: "Turkish", Aliases: []string{"turkish"}},
	{Code: "el", Alpha3: "ell", Alpha3B: "gre", Name: "Greek", Aliases: []string{"greek"}},
	{Code: "he", Alpha3: "heb", Name: "Hebrew", Aliases: []string{"hebrew", "iw"}},
	{Code: "cs", Alpha3: "ces", Alpha3B: "cze", Name: "Czech", Aliases: []string{"czech"}},
	{Code: "hu", Alpha3: "hun", Name: "Hungarian", Aliases: []string{"hungarian"}},
	{Code: "ro", Alpha3: "ron", Alpha3B: "rum", Name: "Romanian", Aliases: []string{"romanian"}},
	{Code: "uk", Alpha3: "ukr", Name: "Ukrainian", Aliases: []string{"ukrainian"}},
	{Code: "fa", Alpha3: "fas", Alpha3B: "per", Name: "Persian", Aliases: []string{"persian", "farsi", "farsi/persian"}},
	{Code: "bn", Alpha3: "ben", Name: "Bengali", Aliases: []string{"bengali"}},
}
