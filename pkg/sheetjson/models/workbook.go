package models

// DocumentMetadata describes the source document a payload was generated from.
type DocumentMetadata struct {
	// Title is the document title.
	Title string `json:"title"`
	// Link is the canonical link to the document.
	Link string `json:"link"`
	// Timestamp is the document's last-modified time in microseconds since the epoch.
	Timestamp int64 `json:"timestamp"`
}

// Envelope is the published payload: document metadata next to the exported data.
type Envelope struct {
	Metadata DocumentMetadata `json:"metadata"`
	Data     any              `json:"data"`
}
