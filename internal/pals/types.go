package pals

// Envelope is the paginated wrapper returned by every Paldeck endpoint:
// the listing endpoint (GET ?limit=N) and the detail endpoint (GET ?name=X)
// share the same shape.
type Envelope struct {
	Content []Pal `json:"content"`
	Page    int64 `json:"page"`
	Limit   int64 `json:"limit"`
	Count   int64 `json:"count"`
	Total   int64 `json:"total"`
}

// Pal is a single creature record as returned by the Paldeck API.
// Field names mirror the upstream camelCase JSON.
type Pal struct {
	ID          int64         `json:"id"`
	Key         string        `json:"key"`
	Image       string        `json:"image"`
	Name        string        `json:"name"`
	Wiki        string        `json:"wiki"`
	Types       []string      `json:"types"`
	ImageWiki   string        `json:"imageWiki"`
	Suitability []Suitability `json:"suitability"`
	Drops       []string      `json:"drops"`
	Aura        Aura          `json:"aura"`
	Description string        `json:"description"`
}

// Suitability is one work-suitability entry: a work category and its level.
type Suitability struct {
	Type  string `json:"type"`
	Level int64  `json:"level"`
}

// Aura is a Pal's passive ability.
type Aura struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
