package docstore

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed books.json
var seedData []byte

type seedFile struct {
	Books []Fields `json:"books"`
}

// SeedBooks returns a fresh copy of the bundled starter catalog. The entries
// are full documents, ids and timestamps included, matching what the store
// would have assigned.
func SeedBooks() []Fields {
	var f seedFile
	if err := json.Unmarshal(seedData, &f); err != nil {
		panic(fmt.Sprintf("corrupt embedded seed data: %v", err))
	}
	return f.Books
}
