package index

// Document is one indexed document row.
type Document struct {
	ID          int64
	URI         string
	Checksum    []byte
	LastUpdated int64
}

// Definition is one link-reference definition row belonging to a document.
type Definition struct {
	Label           string
	NormalizedLabel string
	Target          string
	Line            int
}
