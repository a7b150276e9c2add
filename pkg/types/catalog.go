package types

// Catalog is an ordered list of study sentences with their phrase
// breakdowns. Text units carry no separate IDs; identity is content.
type Catalog struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Language  string     `json:"language"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence is one study sentence and its phrase-by-phrase breakdown
type Sentence struct {
	Text    string   `json:"text"`
	Gloss   string   `json:"gloss,omitempty"`
	Phrases []Phrase `json:"phrases,omitempty"`
}

// Phrase is a single phrase of a sentence paired with its gloss
type Phrase struct {
	Text  string `json:"text"`
	Gloss string `json:"gloss,omitempty"`
}

// Cursor is the UI's current selection. It is read-only input to the
// playback pipeline; the UI owns it.
type Cursor struct {
	Sentence int `json:"sentence"`
	Phrase   int `json:"phrase"`
}
